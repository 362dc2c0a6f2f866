package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/history"
	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/pricing"
	"github.com/Simplici0/unitecon/internal/report"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(s snapshot.Snapshot) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF " + s.Title), nil
}

func newService(t *testing.T, renderer report.Renderer) (*Service, *clock.FakeClock) {
	t.Helper()

	ams, err := time.LoadLocation(clock.ReferenceZone)
	require.NoError(t, err)
	c := clock.NewFakeClock(time.Date(2026, 10, 15, 14, 3, 7, 0, ams))

	journal := history.NewJournal(nil, history.NewMemory(c), time.Second, zap.NewNop(), nil)
	svc := New(Deps{
		Journal:  journal,
		Renderer: renderer,
		Charter:  report.NewCharter("", zap.NewNop()),
		Clock:    c,
		Log:      zap.NewNop(),
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	return svc, c
}

func TestNew_StartsFromDefaults(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})

	st := svc.State()
	assert.Len(t, st.Materials, 4)
	assert.Nil(t, st.Inputs.Materials)
	assert.Equal(t, 95, st.Metrics.SellableUnits)
	assert.Len(t, st.Breakdown, 6)
}

func TestSetInputs_KeepsMaterialsAndClamps(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})

	st := svc.SetInputs(pricing.BatchInputs{
		Materials:     []pricing.MaterialLine{{Name: "ignored"}},
		BatchSize:     0,
		RejectRatePct: decimal.NewFromInt(80),
		SellPrice:     decimal.NewFromInt(500),
		Title:         "Тарелка",
	})

	assert.Len(t, st.Materials, 4)
	assert.Equal(t, "Тарелка", st.Inputs.Title)
	assert.Equal(t, 1, st.Inputs.BatchSize)
	assert.True(t, st.Inputs.RejectRatePct.Equal(decimal.NewFromInt(30)))
	assert.True(t, st.Inputs.LaborUnit.IsZero())
}

func TestMaterials_AddUpdateRemove(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})
	before := svc.State().Metrics.CogsUnit

	st := svc.AddMaterial(pricing.MaterialLine{Name: "Деколь", UnitCost: decimal.NewFromInt(10)})
	require.Len(t, st.Materials, 5)
	assert.True(t, st.Metrics.CogsUnit.Equal(before.Add(decimal.NewFromInt(10))))

	st, err := svc.UpdateMaterial(4, pricing.MaterialLine{Name: "Деколь", UnitCost: decimal.NewFromInt(-4)})
	require.NoError(t, err)
	assert.True(t, st.Materials[4].UnitCost.IsZero())

	st, err = svc.RemoveMaterial(0)
	require.NoError(t, err)
	require.Len(t, st.Materials, 4)
	assert.Equal(t, "Глазурь (декор)", st.Materials[0].Name)

	_, err = svc.RemoveMaterial(9)
	assert.ErrorIs(t, err, ErrMaterialIndex)
	_, err = svc.UpdateMaterial(-1, pricing.MaterialLine{})
	assert.ErrorIs(t, err, ErrMaterialIndex)
}

func TestState_IsACopy(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})

	st := svc.State()
	st.Materials[0].Name = "changed"

	assert.Equal(t, "Глазурь (осн.)", svc.State().Materials[0].Name)
}

func TestSave_ThenEditDoesNotTouchSnapshot(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})
	ctx := context.Background()

	res, err := svc.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", res.Backend)
	assert.True(t, res.Document)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "2026-10-15T14:03:07+02:00", res.SavedAt)

	_, err = svc.UpdateMaterial(0, pricing.MaterialLine{Name: "edited", UnitCost: decimal.NewFromInt(1)})
	require.NoError(t, err)

	text, err := svc.Text(ctx, res.ID)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Глазурь (осн.)")
	assert.NotContains(t, string(text), "edited")

	id, doc, err := svc.LastDocument()
	require.NoError(t, err)
	assert.Equal(t, res.ID, id)
	assert.Equal(t, []byte("%PDF Керамическая кружка"), doc)
}

func TestSave_RenderFailureStillSaves(t *testing.T) {
	svc, _ := newService(t, stubRenderer{err: report.ErrRenderingUnavailable})
	ctx := context.Background()

	res, err := svc.Save(ctx)
	require.NoError(t, err)
	assert.False(t, res.Document)
	assert.NotEmpty(t, res.Warning)

	_, _, err = svc.LastDocument()
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = svc.Document(ctx, res.ID)
	assert.ErrorIs(t, err, history.ErrNotFound)

	list, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].HasDocument)
}

func TestLoad_OverwritesEveryInput(t *testing.T) {
	svc, c := newService(t, stubRenderer{})
	ctx := context.Background()

	saved, err := svc.Save(ctx)
	require.NoError(t, err)
	want := svc.State()

	c.Advance(time.Hour)
	svc.SetInputs(pricing.BatchInputs{BatchSize: 7, SellPrice: decimal.NewFromInt(10), Title: "другое"})
	_, err = svc.RemoveMaterial(0)
	require.NoError(t, err)
	svc.AddMaterial(pricing.MaterialLine{Name: "extra", UnitCost: decimal.NewFromInt(3)})

	got, err := svc.Load(ctx, saved.ID)
	require.NoError(t, err)

	assert.True(t, got.Inputs.Equal(want.Inputs))
	assert.Equal(t, want.Materials, got.Materials)
	assert.True(t, got.Metrics.Equal(want.Metrics))

	_, err = svc.Load(ctx, "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, c := newService(t, stubRenderer{})
	ctx := context.Background()

	first, err := svc.Save(ctx)
	require.NoError(t, err)
	c.Advance(time.Minute)
	svc.SetInputs(pricing.BatchInputs{BatchSize: 10, SellPrice: decimal.NewFromInt(100), Title: "второй"})
	second, err := svc.Save(ctx)
	require.NoError(t, err)

	list, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "второй", list[0].Title)
}

func TestChart(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})

	png, err := svc.Chart()
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestSave_CanceledContextStillLandsInSession(t *testing.T) {
	svc, _ := newService(t, stubRenderer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", res.Backend)
}

package builderapi_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar"
	builderapi "github.com/bmue76/leadradar/internal/leadradar/builder-api"
	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/bmue76/leadradar/internal/leadradar/config"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "e2e-secret"

// flakyServer пропускает запросы к настоящему API, но умеет уронить следующую операцию заданного типа.
type flakyServer struct {
	next   http.Handler
	failOp atomic.Value
	ops    map[string]*atomic.Int32
}

func (f *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPatch {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		for op, n := range f.ops {
			if bytes.Contains(body, []byte(`"op":"`+op+`"`)) {
				n.Add(1)
				if fail, _ := f.failOp.Load().(string); fail == op {
					f.failOp.Store("")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = io.WriteString(w, `{"ok":false,"error":{"code":5000,"message":"storage unavailable","correlationId":"e2e-1"}}`)
					return
				}
			}
		}
	}
	f.next.ServeHTTP(w, r)
}

func (f *flakyServer) count(op string) int32 {
	return f.ops[op].Load()
}

type env struct {
	client *builderapi.Client
	flaky  *flakyServer
	formID string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := utils.OpenDB("sqlite://:memory:", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, dao.Migrate(db))

	s := leadradar.NewServices(db, &config.Config{SecretKey: secret}, "e2e")
	e, err := s.NewEcho(prometheus.NewRegistry())
	require.NoError(t, err)

	flaky := &flakyServer{next: e, ops: map[string]*atomic.Int32{}}
	for _, op := range []string{"REORDER", "PATCH_FIELD", "DELETE_FIELD", "DUPLICATE_FIELD"} {
		flaky.ops[op] = new(atomic.Int32)
	}
	srv := httptest.NewServer(flaky)
	t.Cleanup(srv.Close)

	token, err := leadradar.IssueTenantToken([]byte(secret), "acme", time.Hour)
	require.NoError(t, err)
	client, err := builderapi.New(srv.URL, token, builderapi.WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	form, err := client.CreateForm(context.Background(), "Messe 2026")
	require.NoError(t, err)
	return &env{client: client, flaky: flaky, formID: form.ID}
}

func (e *env) serverOrder(t *testing.T) []string {
	t.Helper()
	snap, err := e.client.Load(context.Background(), e.formID)
	require.NoError(t, err)
	return builder.FromFields(snap.Fields).Order()
}

func TestCoordinatorAgainstServer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	coord := builder.NewCoordinator(e.client, e.formID)
	defer coord.Close()
	require.NoError(t, coord.Load(ctx))
	assert.Zero(t, coord.Store().Len())

	t.Run("contact field is created once", func(t *testing.T) {
		first, err := coord.AddFromLibrary(ctx, "contact.email", builder.Position{Section: builder.SectionContact})
		require.NoError(t, err)
		assert.False(t, first.Selected)
		assert.Equal(t, builder.SectionContact, first.Field.Section)
		assert.Equal(t, "email", first.Field.Key)

		second, err := coord.AddFromLibrary(ctx, "contact.email", builder.Position{Section: builder.SectionForm})
		require.NoError(t, err)
		assert.True(t, second.Selected)
		assert.Equal(t, first.Field.ID, second.Field.ID)
		assert.Equal(t, 1, coord.Store().Len())
	})

	var text, rating builder.Field
	t.Run("add at index", func(t *testing.T) {
		res, err := coord.AddFromLibrary(ctx, "text", builder.Position{Section: builder.SectionForm, Index: 0})
		require.NoError(t, err)
		text = res.Field

		res, err = coord.AddFromLibrary(ctx, "rating", builder.Position{Section: builder.SectionForm, Index: 0})
		require.NoError(t, err)
		rating = res.Field

		form := coord.Store().Section(builder.SectionForm)
		require.Len(t, form, 2)
		assert.Equal(t, rating.ID, form[0].ID)
		assert.Equal(t, text.ID, form[1].ID)
		assert.Equal(t, coord.Store().Order(), e.serverOrder(t))
	})

	t.Run("move within section", func(t *testing.T) {
		require.NoError(t, coord.Move(ctx, text.ID, builder.Position{Section: builder.SectionForm, Index: 0}))
		form := coord.Store().Section(builder.SectionForm)
		assert.Equal(t, text.ID, form[0].ID)
		assert.Equal(t, coord.Store().Order(), e.serverOrder(t))
	})

	t.Run("move across sections", func(t *testing.T) {
		require.NoError(t, coord.Move(ctx, rating.ID, builder.Position{Section: builder.SectionContact, Index: 0}))
		moved, ok := coord.Store().Field(rating.ID)
		require.True(t, ok)
		assert.Equal(t, builder.SectionContact, moved.Section)
		assert.Equal(t, builder.SectionContact, moved.Config.Section)
		assert.Equal(t, coord.Store().Order(), e.serverOrder(t))
	})

	t.Run("failed reorder is repaired by reload", func(t *testing.T) {
		before := e.serverOrder(t)
		e.flaky.failOp.Store("REORDER")

		err := coord.Move(ctx, rating.ID, builder.Position{Section: builder.SectionContact, Index: 2})
		var se *builder.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 5000, se.Code)
		assert.Equal(t, "e2e-1", se.CorrelationID)

		assert.NotEqual(t, before, coord.Store().Order())
		assert.False(t, coord.Busy())

		require.NoError(t, coord.Reload(ctx))
		assert.Equal(t, before, coord.Store().Order())
	})

	t.Run("system field is never deleted", func(t *testing.T) {
		sys, err := e.client.CreateField(ctx, e.formID, builder.FieldDraft{
			Key:      "system_source",
			Label:    "Source",
			Type:     builder.TypeText,
			IsActive: true,
			Config:   builder.DefaultConfig(builder.TypeText, builder.SectionForm),
		})
		require.NoError(t, err)
		require.NoError(t, coord.Reload(ctx))

		calls := e.flaky.count("DELETE_FIELD")
		err = coord.Delete(ctx, sys.ID)
		assert.ErrorIs(t, err, builder.ErrSystemField)
		assert.Equal(t, calls, e.flaky.count("DELETE_FIELD"))

		_, err = coord.Duplicate(ctx, sys.ID)
		assert.ErrorIs(t, err, builder.ErrSystemField)
	})

	t.Run("duplicate and delete", func(t *testing.T) {
		clone, err := coord.Duplicate(ctx, text.ID)
		require.NoError(t, err)
		assert.NotEqual(t, text.Key, clone.Key)
		assert.Equal(t, coord.Store().Order(), e.serverOrder(t))

		require.NoError(t, coord.Delete(ctx, clone.ID))
		_, ok := coord.Store().Field(clone.ID)
		assert.False(t, ok)
		assert.Equal(t, coord.Store().Order(), e.serverOrder(t))
	})
}

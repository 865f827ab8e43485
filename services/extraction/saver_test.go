package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	nextOrder int
	failOn    string
	nextID    uint
	rows      map[uint]model.Module
	inserted  []string
}

func newFakeWriter(nextOrder int) *fakeWriter {
	return &fakeWriter{nextOrder: nextOrder, rows: map[uint]model.Module{}}
}

func (w *fakeWriter) NextTopLevelOrder(context.Context, uint) (int, error) {
	return w.nextOrder, nil
}

func (w *fakeWriter) Insert(_ context.Context, m *model.Module) error {
	if m.ModuleName == w.failOn {
		return errors.New("insert rejected")
	}
	w.nextID++
	m.ID = w.nextID
	w.rows[m.ID] = *m
	w.inserted = append(w.inserted, m.ModuleName)
	return nil
}

func (w *fakeWriter) Delete(_ context.Context, ids []uint) error {
	for _, id := range ids {
		delete(w.rows, id)
	}
	return nil
}

func sampleModules() []ExtractedModule {
	return []ExtractedModule{
		{ModuleName: "Welcome", ContentType: "text", SubModules: []ExtractedModule{{ModuleName: "Culture"}, {ModuleName: "Tools"}}},
		{ModuleName: "Security", ContentType: "video", ContentURL: "https://youtu.be/abc"},
	}
}

func TestSaverInsertsParentsBeforeChildren(t *testing.T) {
	w := newFakeWriter(4)
	saved, err := NewSaver(w).Save(context.Background(), 9, sampleModules())
	require.NoError(t, err)

	assert.Equal(t, []string{"Welcome", "Security", "Culture", "Tools"}, w.inserted)
	require.Len(t, saved, 2)
	assert.Equal(t, 4, saved[0].ModuleOrder)
	assert.Equal(t, 5, saved[1].ModuleOrder)
	assert.Nil(t, saved[0].ParentModuleID)

	require.Len(t, saved[0].SubModules, 2)
	for i, child := range saved[0].SubModules {
		require.NotNil(t, child.ParentModuleID)
		assert.Equal(t, saved[0].ID, *child.ParentModuleID)
		assert.Equal(t, i+1, child.ModuleOrder)
		assert.Equal(t, uint(9), child.CourseID)
	}

	assert.Equal(t, model.ContentTypeVideo, saved[1].ContentType)
	assert.Equal(t, "https://youtu.be/abc", saved[1].ResolveContent().PrimaryURL())
	assert.Len(t, w.rows, 4)
}

func TestSaverRemovesParentsWhenChildFails(t *testing.T) {
	w := newFakeWriter(1)
	w.failOn = "Tools"

	_, err := NewSaver(w).Save(context.Background(), 9, sampleModules())
	require.Error(t, err)

	var stepErr *saga.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "insert_sub_modules", stepErr.Step)
	assert.NoError(t, stepErr.CompensationErr)
	assert.Empty(t, w.rows)
}

func TestSaverRemovesPartialParents(t *testing.T) {
	w := newFakeWriter(1)
	w.failOn = "Security"

	_, err := NewSaver(w).Save(context.Background(), 9, sampleModules())
	require.Error(t, err)
	assert.Empty(t, w.rows)
}

func TestSaverNothingToSave(t *testing.T) {
	_, err := NewSaver(newFakeWriter(1)).Save(context.Background(), 9, nil)
	assert.ErrorIs(t, err, ErrNothingToSave)
}

func TestPreviewStoreInMemory(t *testing.T) {
	ctx := context.Background()
	store := NewPreviewStore(nil, time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	p := &Preview{CourseID: 3, Source: SourceText, Modules: sampleModules()}
	require.NoError(t, store.Put(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, now.Add(time.Minute), p.ExpiresAt)

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.CourseID)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	other := &Preview{CourseID: 4}
	require.NoError(t, store.Put(ctx, other))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	_, err = store.Get(ctx, other.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

type stubExtractor struct {
	result *Result
	err    error
	calls  int
	last   Request
}

func (s *stubExtractor) Extract(_ context.Context, req Request) (*Result, error) {
	s.calls++
	s.last = req
	return s.result, s.err
}

type stubCourses map[uint]bool

func (c stubCourses) Exists(_ context.Context, id uint) error {
	if !c[id] {
		return errors.New("course not found")
	}
	return nil
}

func newTestService(ext Extractor, w ModuleWriter) *Service {
	return NewService(stubCourses{1: true, 2: true}, ext, NewLoader(time.Second), NewPreviewStore(nil, time.Hour), NewSaver(w))
}

func TestServicePreviewAndSave(t *testing.T) {
	ctx := context.Background()
	ext := &stubExtractor{result: &Result{Success: true, Modules: sampleModules()}}
	w := newFakeWriter(1)
	svc := newTestService(ext, w)

	p, err := svc.Preview(ctx, 1, 7, SourceText, "Welcome to the company", nil)
	require.NoError(t, err)
	assert.Empty(t, w.rows)
	assert.Equal(t, uint(7), p.CreatedBy)

	_, err = svc.Save(ctx, 2, p.ID, nil)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	saved, err := svc.Save(ctx, 1, p.ID, []ExtractedModule{{ModuleName: "Only this"}})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Only this", saved[0].ModuleName)

	_, err = svc.Save(ctx, 1, p.ID, nil)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestServicePreviewFailures(t *testing.T) {
	ctx := context.Background()

	disabled := newTestService(nil, newFakeWriter(1))
	assert.False(t, disabled.Enabled())
	_, err := disabled.Preview(ctx, 1, 7, SourceText, "x", nil)
	assert.ErrorIs(t, err, ErrDisabled)

	ext := &stubExtractor{result: &Result{Success: false, Error: "model overloaded"}}
	svc := newTestService(ext, newFakeWriter(1))

	_, err = svc.Preview(ctx, 99, 7, SourceText, "x", nil)
	require.Error(t, err)
	assert.Equal(t, 0, ext.calls)

	_, err = svc.Preview(ctx, 1, 7, SourceText, "x", nil)
	assert.ErrorIs(t, err, ErrRejected)

	ext.result = &Result{Success: true, Modules: []ExtractedModule{{ModuleName: " "}}}
	_, err = svc.Preview(ctx, 1, 7, SourceText, "x", nil)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestServiceForwardsURLToFunction(t *testing.T) {
	pageHits := 0
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHits++
		_, _ = w.Write([]byte("<p>Internal wiki</p>"))
	}))
	defer page.Close()

	var got Request
	fn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Result{Success: true, Modules: sampleModules()})
	}))
	defer fn.Close()

	svc := newTestService(NewFunctionClient(fn.URL, "", time.Second), newFakeWriter(1))

	_, err := svc.Preview(context.Background(), 1, 7, SourceURL, "  "+page.URL+"  ", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceURL, got.Source)
	assert.Equal(t, page.URL, got.Content)
	assert.Zero(t, pageHits)

	_, err = svc.Preview(context.Background(), 1, 7, SourceURL, "file:///etc/passwd", nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = svc.Preview(context.Background(), 1, 7, SourceText, "Welcome aboard", nil)
	require.NoError(t, err)
	assert.Equal(t, Request{Content: "Welcome aboard", Source: SourceText}, got)
}

func TestServiceSendsLocallyLoadedSourcesAsText(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<h1>Expense policy</h1>"))
	}))
	defer page.Close()

	ext := &stubExtractor{result: &Result{Success: true, Modules: sampleModules()}}
	svc := NewService(stubCourses{1: true}, ext, &Loader{httpClient: page.Client()}, NewPreviewStore(nil, time.Hour), NewSaver(newFakeWriter(1)))

	p, err := svc.Preview(context.Background(), 1, 7, SourceURL, page.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, Request{Content: "Expense policy", Source: SourceText}, ext.last)
	assert.Equal(t, SourceURL, p.Source)
}

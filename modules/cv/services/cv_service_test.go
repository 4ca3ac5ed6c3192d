package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/compiler"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/profile"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

type mockSectionRepo struct {
	sections []section.Section
	err      error
}

func (m *mockSectionRepo) GetAll(context.Context) ([]section.Section, error) {
	return m.sections, m.err
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (section.Section, error) {
	for _, s := range m.sections {
		if s.ID == id {
			return s, nil
		}
	}
	return section.Section{}, errors.New("not found")
}

type mockRecordRepo struct {
	records map[string][]section.Record
	err     map[string]error
}

func (m *mockRecordRepo) GetForUser(_ context.Context, userID string, _ []string) ([]section.Record, error) {
	if err := m.err[userID]; err != nil {
		return nil, err
	}
	return m.records[userID], nil
}

type mockTemplateRepo struct {
	tpl *template.Template
	err error
}

func (m *mockTemplateRepo) GetAll(context.Context) ([]*template.Template, error) {
	return []*template.Template{m.tpl}, m.err
}

func (m *mockTemplateRepo) GetByID(context.Context, uuid.UUID) (*template.Template, error) {
	return m.tpl, m.err
}

func (m *mockTemplateRepo) Save(context.Context, *template.Template) error { return m.err }

func (m *mockTemplateRepo) Delete(context.Context, uuid.UUID) error { return m.err }

type mockProfileRepo struct{}

func (m *mockProfileRepo) GetDeclarations(context.Context, string) ([]profile.Declaration, error) {
	return []profile.Declaration{{Title: "Declaration", Body: "Accurate."}}, nil
}

func (m *mockProfileRepo) GetAffiliations(context.Context, string) ([]profile.Affiliation, error) {
	return []profile.Affiliation{{Role: "Professor", Department: "Medicine"}}, nil
}

type recordingBus struct {
	events []interface{}
}

func (b *recordingBus) Publish(args ...interface{}) { b.events = append(b.events, args...) }
func (b *recordingBus) Subscribe(interface{})       {}
func (b *recordingBus) Unsubscribe(interface{})     {}
func (b *recordingBus) Clear()                      {}
func (b *recordingBus) SubscribersCount() int       { return 0 }

func newTestService(t *testing.T, records *mockRecordRepo, bus *recordingBus) *CVService {
	t.Helper()
	tpl := &template.Template{
		ID:    uuid.New(),
		Title: "Faculty CV",
		Root: &template.GroupNode{
			Children: []template.Node{&template.TableNode{SectionID: "pubs"}},
		},
	}
	sections := &mockSectionRepo{sections: []section.Section{{
		ID:         "pubs",
		Title:      "Publications",
		Attributes: map[string]string{"title": "f_title", "dates": "f_dates"},
	}}}
	return NewCVService(
		sections,
		records,
		&mockTemplateRepo{tpl: tpl},
		&mockProfileRepo{},
		failingQueries{},
		bus,
		2024,
	)
}

type failingQueries struct{}

func (failingQueries) Execute(string, []compiler.Row) (compiler.Result, error) {
	return compiler.Result{}, errors.New("no queries in this test")
}

func pubRecord(title string) section.Record {
	return section.Record{
		ID:        uuid.NewString(),
		SectionID: "pubs",
		Fields:    map[string]any{"f_title": title, "f_dates": "2021"},
	}
}

func TestCVService_CompileUser(t *testing.T) {
	bus := &recordingBus{}
	records := &mockRecordRepo{records: map[string][]section.Record{
		"u1": {pubRecord("A paper")},
	}}
	svc := newTestService(t, records, bus)

	html, err := svc.CompileUser(context.Background(), uuid.New(), "u1")
	require.NoError(t, err)
	assert.Contains(t, html, "Faculty CV")
	assert.Contains(t, html, "A paper")
	assert.Contains(t, html, "Professor, Medicine")
}

func TestCVService_CompileUser_RecordFetchFails(t *testing.T) {
	bus := &recordingBus{}
	records := &mockRecordRepo{err: map[string]error{"u1": errors.New("db down")}}
	svc := newTestService(t, records, bus)

	_, err := svc.CompileUser(context.Background(), uuid.New(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCVService_CompileBatch(t *testing.T) {
	bus := &recordingBus{}
	records := &mockRecordRepo{
		records: map[string][]section.Record{
			"u1": {pubRecord("First paper")},
			"u3": {pubRecord("Third paper")},
		},
		err: map[string]error{"u2": errors.New("db down")},
	}
	svc := newTestService(t, records, bus)

	result, err := svc.CompileBatch(context.Background(), uuid.New(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)

	// one failure does not stop the remaining users
	assert.Equal(t, 2, result.Compiled)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "u2", result.Failures[0].UserID)
	assert.Contains(t, result.HTML, "First paper")
	assert.Contains(t, result.HTML, "Third paper")
	assert.Contains(t, result.HTML, "cv-page-break")
}

func TestCVService_CompileBatch_PublishesEvent(t *testing.T) {
	bus := &recordingBus{}
	records := &mockRecordRepo{records: map[string][]section.Record{
		"u1": {pubRecord("A")},
	}}
	svc := newTestService(t, records, bus)

	_, err := svc.CompileBatch(context.Background(), uuid.New(), []string{"u1"})
	require.NoError(t, err)

	require.NotEmpty(t, bus.events)
	var event *CVCompiledEvent
	for _, e := range bus.events {
		if ev, ok := e.(*CVCompiledEvent); ok {
			event = ev
		}
	}
	require.NotNil(t, event)
	assert.Equal(t, 1, event.Users)
	assert.Equal(t, 0, event.Failed)
}

func TestCVService_CompileBatch_TemplateFetchFails(t *testing.T) {
	svc := NewCVService(
		&mockSectionRepo{},
		&mockRecordRepo{},
		&mockTemplateRepo{err: errors.New("missing")},
		&mockProfileRepo{},
		failingQueries{},
		&recordingBus{},
		2024,
	)
	_, err := svc.CompileBatch(context.Background(), uuid.New(), []string{"u1"})
	assert.Error(t, err)
}

func TestBatchFailure_String(t *testing.T) {
	f := BatchFailure{Index: 2, UserID: "u3", Err: errors.New("boom")}
	assert.Equal(t, "CV 3: user u3: boom", f.String())
}

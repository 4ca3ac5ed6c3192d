package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vitaworks/vitaworks/modules/cv/compiler"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/profile"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
	"github.com/vitaworks/vitaworks/pkg/composables"
	"github.com/vitaworks/vitaworks/pkg/eventbus"
)

// CVService orchestrates CV compilation: it fetches the template, section
// schemas and per-user data, then drives the compilation context through a
// strictly sequential per-user loop. One fully rendered user at a time;
// a user's fetch failure is surfaced in the batch result without stopping
// the rest of the batch.
type CVService struct {
	sections  section.Repository
	records   section.RecordRepository
	templates template.Repository
	profiles  profile.Repository
	queries   compiler.QueryExecutor
	publisher eventbus.EventBus
	asOfYear  int
}

func NewCVService(
	sections section.Repository,
	records section.RecordRepository,
	templates template.Repository,
	profiles profile.Repository,
	queries compiler.QueryExecutor,
	publisher eventbus.EventBus,
	asOfYear int,
) *CVService {
	return &CVService{
		sections:  sections,
		records:   records,
		templates: templates,
		profiles:  profiles,
		queries:   queries,
		publisher: publisher,
		asOfYear:  asOfYear,
	}
}

// BatchFailure reports one user whose CV could not be compiled.
type BatchFailure struct {
	Index  int
	UserID string
	Err    error
}

func (f BatchFailure) String() string {
	return fmt.Sprintf("CV %d: user %s: %v", f.Index+1, f.UserID, f.Err)
}

// BatchResult is the outcome of a batch compilation: the concatenated HTML
// of every user that compiled, plus the per-user failures.
type BatchResult struct {
	HTML     string
	Compiled int
	Failures []BatchFailure
}

// CompileUser compiles and renders a single user's CV.
func (s *CVService) CompileUser(ctx context.Context, templateID uuid.UUID, userID string) (string, error) {
	docs, failures, err := s.compile(ctx, templateID, []string{userID})
	if err != nil {
		return "", err
	}
	if len(failures) > 0 {
		return "", failures[0].Err
	}
	return compiler.RenderDocument(docs[0]), nil
}

// CompileBatch compiles a batch of users sequentially into one document
// with page breaks between users.
func (s *CVService) CompileBatch(ctx context.Context, templateID uuid.UUID, userIDs []string) (*BatchResult, error) {
	docs, failures, err := s.compile(ctx, templateID, userIDs)
	if err != nil {
		return nil, err
	}
	return &BatchResult{
		HTML:     compiler.RenderBatch(docs),
		Compiled: len(docs),
		Failures: failures,
	}, nil
}

func (s *CVService) compile(ctx context.Context, templateID uuid.UUID, userIDs []string) ([]*compiler.CompiledDocument, []BatchFailure, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch template")
	}
	sections, err := s.sections.GetAll(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch sections")
	}
	sectionIDs := make([]string, 0, len(sections))
	for _, sec := range sections {
		sectionIDs = append(sectionIDs, sec.ID)
	}

	opts := []compiler.Option{compiler.WithAsOfYear(s.asOfYear)}
	if logger, lerr := composables.TryUseLogger(ctx); lerr == nil {
		opts = append(opts, compiler.WithLogger(logger))
	}
	cctx := compiler.NewContext(tpl, sections, s.queries, opts...)

	var (
		docs     []*compiler.CompiledDocument
		failures []BatchFailure
	)
	for i, userID := range userIDs {
		doc, err := s.compileOne(ctx, cctx, userID, sectionIDs)
		if err != nil {
			failures = append(failures, BatchFailure{Index: i, UserID: userID, Err: err})
			continue
		}
		docs = append(docs, doc)
	}

	s.publisher.Publish("cv.compiled", &CVCompiledEvent{
		TemplateID: templateID,
		Users:      len(userIDs),
		Failed:     len(failures),
	})
	return docs, failures, nil
}

// compileOne fetches one user's data and compiles it. The compilation
// context is fully re-pointed at the new user before compiling, so a
// failed fetch here never leaks a previous user's records into this one.
func (s *CVService) compileOne(ctx context.Context, cctx *compiler.Context, userID string, sectionIDs []string) (*compiler.CompiledDocument, error) {
	records, err := s.records.GetForUser(ctx, userID, sectionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "fetch records")
	}
	declarations, err := s.profiles.GetDeclarations(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch declarations")
	}
	affiliations, err := s.profiles.GetAffiliations(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch affiliations")
	}

	cctx.SetUser(userID, records)
	doc := cctx.Compile()
	doc.Declarations = declarations
	doc.Affiliations = affiliations
	return doc, nil
}

type CVCompiledEvent struct {
	TemplateID uuid.UUID
	Users      int
	Failed     int
}

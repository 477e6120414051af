// Package usage answers definition and reference requests by wiring the
// resolver, classifier and insight generator over one host.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phobologic/refscope/internal/classify"
	"github.com/phobologic/refscope/internal/config"
	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/insight"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/resolve"
	"github.com/phobologic/refscope/internal/testpath"
)

// Request selects a target either by name or by file position. Position
// takes precedence over Line and Column when both are given.
type Request struct {
	SymbolName         string
	FilePath           string
	Position           *int
	Line               int // 1-based
	Column             int // 1-based
	Kind               string
	IncludeDeclaration bool
}

func (r Request) byName() bool {
	return strings.TrimSpace(r.SymbolName) != ""
}

func (r Request) byPosition() bool {
	return r.FilePath != "" && (r.Position != nil || r.Line > 0)
}

// Validate checks that exactly one lookup mode is set.
func (r Request) Validate() error {
	switch {
	case r.byName() && (r.byPosition() || r.FilePath != ""):
		return rerrors.New(rerrors.InvalidInput, "validate request", "give either a symbol name or a file position, not both")
	case r.byName(), r.byPosition():
		return nil
	case r.FilePath != "":
		return rerrors.New(rerrors.InvalidInput, "validate request", "a file path needs a position or a line")
	}
	return rerrors.New(rerrors.InvalidInput, "validate request", "a symbol name or a file position is required")
}

// Service handles requests against one host.
type Service struct {
	host   host.Host
	cfg    *config.Config
	tests  *testpath.Matcher
	logger *slog.Logger
}

// NewService creates a Service. It fails only when the configured test or
// library conventions do not compile.
func NewService(h host.Host, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	tests, err := cfg.Matcher()
	if err != nil {
		return nil, rerrors.Wrap(rerrors.InvalidInput, "new service", err)
	}
	return &Service{host: h, cfg: cfg, tests: tests, logger: logger}, nil
}

// FindDefinition returns ranked definition candidates. The only error is an
// InvalidInput request; everything else degrades to an empty list.
func (s *Service) FindDefinition(ctx context.Context, req Request) (cands []model.DefinitionCandidate, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := s.requestLogger("find_definition")
	defer s.recoverRequest(logger, func() { cands, err = nil, nil })

	cands = s.resolve(ctx, logger, req)
	logger.Info("definition resolved", "candidates", len(cands))
	return cands, nil
}

// FindReferences resolves the target and returns its classified, grouped
// usages.
func (s *Service) FindReferences(ctx context.Context, req Request) (res *model.GroupedReferenceResult, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := s.requestLogger("find_references")
	defer s.recoverRequest(logger, func() { res, err = model.EmptyResult(), nil })

	cands := s.resolve(ctx, logger, req)
	if len(cands) == 0 {
		logger.Info("no target resolved")
		return model.EmptyResult(), nil
	}
	target := &cands[0].Symbol

	occs := s.occurrences(ctx, logger, target, req.IncludeDeclaration)
	c := classify.New(s.host, s.tests, logger)
	refs := make([]model.ClassifiedReference, 0, len(occs))
	for _, occ := range occs {
		if ref, ok := s.classifyOne(ctx, logger, c, target, occ); ok {
			refs = append(refs, ref)
		}
	}

	res = insight.Generate(target, refs, s.cfg.Insights)
	logger.Info("references classified",
		"target", qualified(target),
		"references", res.Summary.TotalReferences,
		"files", res.Summary.FileCount)
	return res, nil
}

func (s *Service) requestLogger(op string) *slog.Logger {
	return s.logger.With("op", op, "request_id", uuid.NewString())
}

func (s *Service) recoverRequest(logger *slog.Logger, reset func()) {
	if p := recover(); p != nil {
		logger.Error("request failed", "code", rerrors.Internal, "panic", fmt.Sprint(p))
		reset()
	}
}

func (s *Service) resolve(ctx context.Context, logger *slog.Logger, req Request) []model.DefinitionCandidate {
	r := resolve.New(s.host, s.cfg, s.tests, logger)
	if req.byName() {
		return r.ByName(ctx, resolve.Query{Name: req.SymbolName, Kind: req.Kind})
	}

	if req.Position != nil {
		return r.ByPosition(ctx, req.FilePath, *req.Position)
	}
	offset, err := s.host.Offset(ctx, req.FilePath, req.Line, max(req.Column, 1))
	if err != nil {
		logger.Debug("invalid position", "file", req.FilePath, "line", req.Line, "column", req.Column, "error", err)
		return nil
	}
	return r.ByPosition(ctx, req.FilePath, offset)
}

// classifyOne isolates a single occurrence so one bad site cannot sink the
// whole request.
func (s *Service) classifyOne(ctx context.Context, logger *slog.Logger, c *classify.Classifier, target *model.Symbol, occ model.Occurrence) (ref model.ClassifiedReference, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("occurrence skipped", "file", occ.Location.File, "offset", occ.Location.Start, "panic", fmt.Sprint(p))
			ok = false
		}
	}()
	return c.Classify(ctx, target, occ), true
}

func (s *Service) hostFailure(logger *slog.Logger, op string, err error, args ...any) {
	logger.Warn("host query failed", append([]any{"op", op, "code", rerrors.HostQueryFailure, "error", err}, args...)...)
}

func qualified(sym *model.Symbol) string {
	if sym.QualifiedName != "" {
		return sym.QualifiedName
	}
	return sym.Name
}

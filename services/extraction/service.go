package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/gofiber/fiber/v2/log"
)

// CourseChecker confirms a course exists before anything is extracted for it
type CourseChecker interface {
	Exists(ctx context.Context, id uint) error
}

// Service runs preview and save for the extraction endpoints
type Service struct {
	courses   CourseChecker
	extractor Extractor
	loader    *Loader
	previews  *PreviewStore
	saver     *Saver
}

// NewService wires the extraction flow. extractor may be nil, in which case
// Preview reports ErrDisabled.
func NewService(courses CourseChecker, extractor Extractor, loader *Loader, previews *PreviewStore, saver *Saver) *Service {
	return &Service{
		courses:   courses,
		extractor: extractor,
		loader:    loader,
		previews:  previews,
		saver:     saver,
	}
}

// Enabled reports whether an extractor is configured
func (s *Service) Enabled() bool {
	return s.extractor != nil
}

// Previews exposes the store for the sweep job
func (s *Service) Previews() *PreviewStore {
	return s.previews
}

// Preview extracts a structure for courseID and stores it for review.
// Nothing is written to the database.
func (s *Service) Preview(ctx context.Context, courseID, userID uint, source Source, content string, file []byte) (*Preview, error) {
	if err := s.courses.Exists(ctx, courseID); err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, source)
	}

	req, err := s.request(ctx, source, content, file)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, req)
	if err != nil {
		log.Errorf("[EXTRACTION] course %d: extractor call failed: %v", courseID, err)
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if err := result.Err(); err != nil {
		log.Warnf("[EXTRACTION] course %d: %v", courseID, err)
		return nil, err
	}

	modules := Normalize(result.Modules)
	if len(modules) == 0 {
		return nil, fmt.Errorf("%w: no usable modules returned", ErrRejected)
	}

	p := &Preview{
		CourseID:  courseID,
		CreatedBy: userID,
		Source:    source,
		Modules:   modules,
	}
	if err := s.previews.Put(ctx, p); err != nil {
		return nil, err
	}

	parents, children := Count(modules)
	log.Infof("[EXTRACTION] preview %s for course %d: %d modules, %d sub-modules", p.ID, courseID, parents, children)
	return p, nil
}

// request builds what the extractor receives. Sources the extractor resolves
// itself pass through unchanged; the rest are loaded here and sent as text.
func (s *Service) request(ctx context.Context, source Source, content string, file []byte) (Request, error) {
	if r, ok := s.extractor.(SourceResolver); ok && r.Resolves(source) {
		switch source {
		case SourceURL:
			target, err := ParseSourceURL(content)
			if err != nil {
				return Request{}, err
			}
			return Request{Content: target, Source: SourceURL}, nil
		default:
			if strings.TrimSpace(content) == "" {
				return Request{}, ErrEmptyContent
			}
			return Request{Content: content, Source: source}, nil
		}
	}

	text, err := s.loader.Load(ctx, source, content, file)
	if err != nil {
		return Request{}, err
	}
	return Request{Content: text, Source: SourceText}, nil
}

// Save writes a preview as modules of courseID. When edited is non-empty it
// replaces the stored modules, so reviewers can rename or drop entries first.
func (s *Service) Save(ctx context.Context, courseID uint, previewID string, edited []ExtractedModule) ([]model.Module, error) {
	if err := s.courses.Exists(ctx, courseID); err != nil {
		return nil, err
	}

	p, err := s.previews.Get(ctx, previewID)
	if err != nil {
		return nil, err
	}
	if p.CourseID != courseID {
		return nil, ErrPreviewNotFound
	}

	modules := p.Modules
	if len(edited) > 0 {
		modules = Normalize(edited)
	}
	if len(modules) == 0 {
		return nil, ErrNothingToSave
	}

	saved, err := s.saver.Save(ctx, courseID, modules)
	if err != nil {
		log.Errorf("[EXTRACTION] saving preview %s into course %d failed: %v", previewID, courseID, err)
		return nil, err
	}

	if err := s.previews.Delete(ctx, previewID); err != nil && !errors.Is(err, ErrPreviewNotFound) {
		log.Warnf("[EXTRACTION] preview %s saved but not removed: %v", previewID, err)
	}
	log.Infof("[EXTRACTION] saved preview %s into course %d", previewID, courseID)
	return saved, nil
}

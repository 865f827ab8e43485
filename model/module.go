package model

import (
	"time"

	"github.com/dabhanushali/enacton-training/utils/content"
	"gorm.io/datatypes"
)

// ContentType is how a module delivers its material
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeVideo ContentType = "video"
	ContentTypeLink  ContentType = "link"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeMixed ContentType = "mixed"
)

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeText, ContentTypeVideo, ContentTypeLink, ContentTypePDF, ContentTypeMixed:
		return true
	}
	return false
}

// Module is an ordered unit of course content. ModuleOrder is dense and
// 1-based among siblings sharing CourseID and ParentModuleID.
type Module struct {
	ID                       uint                                 `gorm:"primaryKey" json:"id"`
	CourseID                 uint                                 `gorm:"not null;index:idx_module_course_order" json:"course_id"`
	ParentModuleID           *uint                                `gorm:"index" json:"parent_module_id"`
	ModuleName               string                               `gorm:"type:varchar(255);not null" json:"module_name"`
	ModuleDescription        string                               `gorm:"type:text" json:"module_description"`
	ModuleOrder              int                                  `gorm:"not null;index:idx_module_course_order" json:"module_order"`
	ContentType              ContentType                          `gorm:"type:varchar(20);not null;default:'text'" json:"content_type"`
	ContentURL               string                               `gorm:"type:text" json:"content_url"`
	Content                  datatypes.JSONType[content.Reference] `gorm:"type:jsonb;not null;default:'{}'" json:"content"`
	TextContent              string                               `gorm:"type:text" json:"text_content"`
	IsRequired               bool                                 `gorm:"not null" json:"is_required"`
	Points                   int                                  `gorm:"default:0" json:"points"`
	EstimatedDurationMinutes int                                  `gorm:"default:0" json:"estimated_duration_minutes"`
	CreatedAt                time.Time                            `json:"created_at"`
	UpdatedAt                time.Time                            `json:"updated_at"`

	// Relationships
	Course     *Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	SubModules []Module `gorm:"foreignKey:ParentModuleID;constraint:OnDelete:CASCADE" json:"sub_modules,omitempty"`
}

// TableName specifies the table name for Module
func (Module) TableName() string {
	return "course_modules"
}

// ResolveContent prefers the structured column and falls back to decoding
// the legacy content_url text.
func (m Module) ResolveContent() content.Reference {
	ref := m.Content.Data()
	if ref.IsSet() {
		return ref
	}
	return content.FromLegacy(m.ContentURL)
}

// SetContent writes both the structured column and the legacy text so older
// readers of content_url keep working.
func (m *Module) SetContent(ref content.Reference) {
	if ref.Links == nil {
		ref.Links = []content.Link{}
	}
	ref.Version = content.SchemaVersion
	m.Content = datatypes.NewJSONType(ref)
	m.ContentURL = ref.Legacy()
}

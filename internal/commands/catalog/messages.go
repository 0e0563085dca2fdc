package catalogcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importNotesMessageType = "annocat.catalog.import_notes"
	syncNotesMessageType   = "annocat.catalog.sync_notes"
	lintNotesMessageType   = "annocat.catalog.lint_notes"
	buildSiteMessageType   = "annocat.catalog.build_site"
)

// ImportNotesCommand triggers a filesystem walk for annotation notes under
// Directory and folds the extracted entries into the catalog.
type ImportNotesCommand struct {
	// Directory selects the filesystem path to load notes from.
	Directory string `json:"directory"`
	// Pattern overrides the configured glob for note discovery.
	Pattern string `json:"pattern,omitempty"`
	// DefaultCategory applies to entries with no heading-derived category.
	DefaultCategory string `json:"default_category,omitempty"`
	// DryRun collects the import diff without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportNotesCommand) Type() string { return importNotesMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportNotesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(requireNonBlank("annocat.catalog.import_notes.directory_required"))),
	)
}

// SyncNotesCommand runs a full synchronisation pass: import changed entries,
// optionally update existing records and delete orphans.
type SyncNotesCommand struct {
	Directory       string `json:"directory"`
	Pattern         string `json:"pattern,omitempty"`
	DefaultCategory string `json:"default_category,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
	// DeleteOrphaned removes catalog records without matching note entries.
	DeleteOrphaned bool `json:"delete_orphaned,omitempty"`
	// UpdateExisting overwrites records whose note content changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
}

// Type implements command.Message.
func (SyncNotesCommand) Type() string { return syncNotesMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd SyncNotesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(requireNonBlank("annocat.catalog.sync_notes.directory_required"))),
	)
}

// LintNotesCommand checks documentation quality across the notes directory and
// the catalog it maps to.
type LintNotesCommand struct {
	Directory string `json:"directory"`
	Pattern   string `json:"pattern,omitempty"`
	// FailOn escalates the command to an error when issues at or above the
	// severity exist ("error", "warning", or "none").
	FailOn string `json:"fail_on,omitempty"`
}

// Type implements command.Message.
func (LintNotesCommand) Type() string { return lintNotesMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd LintNotesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(requireNonBlank("annocat.catalog.lint_notes.directory_required"))),
		validation.Field(&cmd.FailOn, validation.In("", "none", "warning", "warn", "error")),
	)
}

// BuildSiteCommand renders the static reference site from the current catalog.
type BuildSiteCommand struct {
	// Categories restricts the build to the named category slugs.
	Categories []string `json:"categories,omitempty"`
	DryRun     bool     `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate implements command message validation; all fields are optional.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd)
}

func requireNonBlank(code string) validation.RuleFunc {
	return func(value any) error {
		str, _ := value.(string)
		if strings.TrimSpace(str) == "" {
			return validation.NewError(code, "value is required")
		}
		return nil
	}
}

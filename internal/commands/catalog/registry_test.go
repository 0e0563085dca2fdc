package catalogcmd

import (
	"testing"

	"github.com/goliatone/go-annocat/internal/commands"
	"github.com/goliatone/go-annocat/internal/commands/fixtures"
	"github.com/goliatone/go-annocat/internal/lint"
	"github.com/goliatone/go-annocat/internal/logging"
)

func TestRegisterCatalogCommandsHandlerOptionsApplied(t *testing.T) {
	services := Services{
		Notes:     &stubNoteService{},
		Lint:      lint.New(nil, logging.NoOp(), lint.Config{}),
		Generator: &stubGeneratorService{},
	}
	importApplied := false
	lintApplied := false

	_, err := RegisterCatalogCommands(nil, services, nil, FeatureGates{},
		WithImportHandlerOptions(func(h *commands.Handler[ImportNotesCommand]) {
			importApplied = true
		}),
		WithLintHandlerOptions(func(h *commands.Handler[LintNotesCommand]) {
			lintApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register catalog commands: %v", err)
	}
	if !importApplied {
		t.Fatal("expected import handler options applied")
	}
	if !lintApplied {
		t.Fatal("expected lint handler options applied")
	}
}

func TestRegisterCatalogCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	services := Services{
		Notes:     &stubNoteService{},
		Lint:      lint.New(nil, logging.NoOp(), lint.Config{}),
		Generator: &stubGeneratorService{},
	}

	set, err := RegisterCatalogCommands(reg, services, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register catalog commands: %v", err)
	}
	if set == nil {
		t.Fatal("expected handler set returned")
	}
	if set.Import == nil || set.Sync == nil || set.Lint == nil || set.Build == nil {
		t.Fatalf("expected all handlers built, got %#v", set)
	}
	if len(reg.Handlers) != 4 {
		t.Fatalf("expected four handlers registered, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.Import {
		t.Fatalf("expected import handler registered first, got %#v", reg.Handlers[0])
	}
}

func TestRegisterCatalogCommandsOptionalServicesSkipped(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	services := Services{Notes: &stubNoteService{}}

	set, err := RegisterCatalogCommands(reg, services, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register catalog commands: %v", err)
	}
	if set.Lint != nil {
		t.Fatal("expected no lint handler without a lint runner")
	}
	if set.Build != nil {
		t.Fatal("expected no build handler without a generator service")
	}
	if len(reg.Handlers) != 2 {
		t.Fatalf("expected two handlers registered, got %d", len(reg.Handlers))
	}
}

func TestRegisterCatalogCommandsNilNoteServiceError(t *testing.T) {
	if _, err := RegisterCatalogCommands(nil, Services{}, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when note service missing")
	}
}

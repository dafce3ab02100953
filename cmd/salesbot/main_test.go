package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbourn/go-salesbot-backend/internal/services"
)

const acmeYAML = `businessName: Acme Spa
businessType: wellness
botName: Lily
primaryGoal: book appointments
services: |
  Facial - RM150
  Massage - RM200
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_VersionAndHelp(t *testing.T) {
	out, _, err := run(t, "", "--version")
	if err != nil || !strings.Contains(out, "dev") {
		t.Fatalf("--version = %q, %v", out, err)
	}
	out, _, err = run(t, "", "--help")
	if err != nil || !strings.Contains(out, "serve") || !strings.Contains(out, "prompt") {
		t.Fatalf("--help = %q, %v", out, err)
	}
}

func TestPromptCommand_TemplateFromFileAndStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	if err := os.WriteFile(path, []byte(acmeYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, _, err := run(t, "", "prompt", "--config", path)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	for _, want := range []string{"Acme Spa", "Lily", "RM150"} {
		if !strings.Contains(fromFile, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	json := `{"businessName":"Acme Spa","businessType":"wellness","botName":"Lily","primaryGoal":"book appointments","services":"Facial - RM150\nMassage - RM200"}`
	fromStdin, _, err := run(t, json, "prompt")
	if err != nil {
		t.Fatalf("prompt stdin: %v", err)
	}
	if fromStdin != fromFile {
		t.Fatal("YAML and JSON configs rendered differently")
	}
}

func TestLoadBotConfig_Errors(t *testing.T) {
	_, err := loadBotConfig(strings.NewReader("botName: Lily\n"))
	var ve *services.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 4 {
		t.Fatalf("err = %v", err)
	}
	if _, err := loadBotConfig(strings.NewReader("nonsense: true\n")); err == nil {
		t.Fatal("unknown field accepted")
	}
	cfg, err := loadBotConfig(strings.NewReader(acmeYAML))
	if err != nil || cfg.Tone == "" {
		t.Fatalf("defaults not applied: %+v %v", cfg, err)
	}
}

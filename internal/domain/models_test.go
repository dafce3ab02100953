package domain

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Session{}).TableName():     "sessions",
		(Bot{}).TableName():         "bots",
		(Submission{}).TableName():  "submissions",
		(Idempotency{}).TableName(): "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestBotConfig_Normalize_AppliesDefaults(t *testing.T) {
	in := BotConfig{
		BusinessName: "  Acme Spa ",
		BotName:      "Lily\n",
		Services:     "\nFacial - RM150\n",
	}
	got := in.Normalize()

	if got.BusinessName != "Acme Spa" || got.BotName != "Lily" {
		t.Fatalf("fields not trimmed: %+v", got)
	}
	if got.Services != "Facial - RM150" {
		t.Fatalf("services = %q", got.Services)
	}
	if got.WorkingHours != DefaultWorkingHours {
		t.Fatalf("working hours default = %q", got.WorkingHours)
	}
	if got.Tone != defaultTone || got.Language != defaultLanguage {
		t.Fatalf("tone/language defaults = %q/%q", got.Tone, got.Language)
	}
	// The receiver is a value; the original must be unchanged.
	if in.WorkingHours != "" {
		t.Fatalf("Normalize mutated its receiver")
	}

	kept := BotConfig{WorkingHours: "Mon-Fri 9-6", Tone: "playful"}.Normalize()
	if kept.WorkingHours != "Mon-Fri 9-6" || kept.Tone != "playful" {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}

func TestBotConfig_Missing(t *testing.T) {
	full := BotConfig{
		BusinessName: "Acme", BusinessType: "spa", BotName: "Lily",
		PrimaryGoal: "book", Services: "Facial",
	}
	if m := full.Missing(); len(m) != 0 {
		t.Fatalf("expected nothing missing, got %v", m)
	}

	got := BotConfig{BotName: "Lily", Services: "  "}.Missing()
	want := []string{"businessName", "businessType", "primaryGoal", "services"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v; want %v", got, want)
	}
}

func TestTurn_IsUser(t *testing.T) {
	cases := map[string]bool{
		"user":      true,
		" User ":    true,
		"assistant": false,
		"bot":       false,
		"":          false,
	}
	for role, want := range cases {
		if got := (Turn{Role: role}).IsUser(); got != want {
			t.Errorf("Turn{%q}.IsUser() = %v; want %v", role, got, want)
		}
	}
}

func TestMigrations_JSONConfigRoundTrip(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Session{}, &Bot{}, &Submission{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&Session{}, &Bot{}, &Submission{}, &Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Idempotency{}, "ux_scope_key") {
		t.Fatalf("expected unique index ux_scope_key on idempotency")
	}

	cfg := BotConfig{
		BusinessName: "Acme Spa",
		Services:     "Facial - RM150\nMassage - RM200",
		CustomFields: map[string]string{"address": "1 Jalan Ampang"},
	}
	in := Bot{ID: "bot_1", Kind: KindTemplateGenerated, Prompt: "p", Config: cfg, CreatedAt: time.Now().UTC()}
	if err := db.Create(&in).Error; err != nil {
		t.Fatalf("create bot: %v", err)
	}

	var out Bot
	if err := db.First(&out, "id = ?", "bot_1").Error; err != nil {
		t.Fatalf("load bot: %v", err)
	}
	if !reflect.DeepEqual(out.Config, cfg) {
		t.Fatalf("config round trip mismatch:\n got %+v\nwant %+v", out.Config, cfg)
	}

	// The kind check constraint rejects unknown origins.
	bad := Bot{ID: "bot_2", Kind: "handwritten", Prompt: "p", CreatedAt: time.Now()}
	if err := db.Create(&bad).Error; err == nil {
		t.Fatalf("expected check constraint violation for unknown kind")
	}
}

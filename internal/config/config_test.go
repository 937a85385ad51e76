package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const memoryConfig = `
port: 9000
backends:
  documents: memory
  realtime: memory
  auth: local
redis:
  enable: false
`

func TestParseMemoryBackends(t *testing.T) {
	cfg, err := Parse([]byte(memoryConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.Backends.Objects != ObjectsNone {
		t.Errorf("objects = %q, want none", cfg.Backends.Objects)
	}
	if cfg.Gallery.Mode != GalleryInline || cfg.Gallery.MaxImageBytes != 1048576 {
		t.Errorf("gallery = %+v", cfg.Gallery)
	}
	if cfg.Session.Persistence != PersistenceLocal {
		t.Errorf("persistence = %q, want local", cfg.Session.Persistence)
	}
	if cfg.UsesFirebase() || cfg.UsesMySQL() {
		t.Errorf("memory config should not need firebase or mysql")
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(memoryConfig + "meilisearch: {}\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"firebase auth without api key": `
backends: {documents: memory, realtime: memory, auth: firebase}
firebase: {project_id: demo}
`,
		"storage gallery without objects": `
backends: {documents: memory, realtime: memory, auth: local}
gallery: {mode: storage}
`,
		"s3 without bucket": `
backends: {documents: memory, realtime: memory, auth: local, objects: s3}
`,
		"rtdb without database url": `
backends: {documents: memory, realtime: rtdb, auth: local}
firebase: {project_id: demo}
`,
		"production without secret": `
env: production
backends: {documents: mysql, realtime: memory, auth: local}
`,
		"bad persistence": `
backends: {documents: memory, realtime: memory, auth: local}
session: {persistence: forever}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseFirebaseBackends(t *testing.T) {
	cfg, err := Parse([]byte(`
env: prod
jwt_secret: s3cret
backends:
  objects: gcs
firebase:
  project_id: umma-christians
  database_url: https://umma-christians-default-rtdb.firebaseio.com
  storage_bucket: umma-christians.appspot.com
  web_api_key: key
gallery:
  mode: storage
session:
  persistence: SESSION
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.IsDev() {
		t.Error("prod alias should normalize to production")
	}
	if cfg.Backends.Objects != ObjectsFirebase {
		t.Errorf("objects = %q, want firebase", cfg.Backends.Objects)
	}
	if cfg.Session.Persistence != PersistenceSession {
		t.Errorf("persistence = %q", cfg.Session.Persistence)
	}
	if !cfg.UsesFirebase() {
		t.Error("expected UsesFirebase")
	}
}

func TestEnvOverridesSecret(t *testing.T) {
	t.Setenv(EnvJWTSecret, "from-env")
	cfg, err := Parse([]byte(memoryConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestDSNAndRedisURL(t *testing.T) {
	cfg, err := Parse([]byte(`
backends: {documents: mysql, realtime: redis, auth: local}
database: {host: db, port: 3307, user: church, password: pw, name: site}
redis: {host: cache, db: 2, password: pw, prefix: "umma:"}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.HasPrefix(cfg.DSN, "church:pw@tcp(db:3307)/site?") {
		t.Errorf("dsn = %q", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "parseTime=true") {
		t.Errorf("dsn missing parseTime: %q", cfg.DSN)
	}
	if cfg.RedisURL != "redis://:pw@cache:6379/2" {
		t.Errorf("redis url = %q", cfg.RedisURL)
	}
	if got := cfg.Redis.Key("livequery"); got != "umma:livequery" {
		t.Errorf("key = %q", got)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(memoryConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d", cfg.Port)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

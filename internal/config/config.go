package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	EnvJWTSecret         = "CHURCH_JWT_SECRET"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"

	defaultPort          = 8080
	defaultEnv           = "development"
	defaultDBHost        = "127.0.0.1"
	defaultDBPort        = 3306
	defaultDBUser        = "root"
	defaultDBPassword    = "password"
	defaultDBName        = "umma_christians"
	defaultDBCharset     = "utf8mb4"
	defaultDBLoc         = "Local"
	defaultRedisHost     = "localhost"
	defaultRedisPort     = 6379
	defaultRedisPrefix   = "church"
	defaultS3Region      = "us-east-1"
	defaultMaxImageBytes = 1024 * 1024
	defaultCookieName    = "church_session"
)

// Load reads and validates the YAML config file at configPath.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content, applies defaults and environment overrides.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	applyRawAppConfig(&cfg, raw)
	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Backends: BackendsConfig{
			Documents: DocumentsFirestore,
			Realtime:  RealtimeRTDB,
			Objects:   ObjectsNone,
			Auth:      AuthFirebase,
		},
		Database: DatabaseRuntimeConfig{
			Host:        defaultDBHost,
			Port:        defaultDBPort,
			User:        defaultDBUser,
			Password:    defaultDBPassword,
			Name:        defaultDBName,
			Charset:     defaultDBCharset,
			ParseTime:   true,
			Loc:         defaultDBLoc,
			AutoMigrate: true,
		},
		Redis: RedisRuntimeConfig{
			Enable: true,
			Host:   defaultRedisHost,
			Port:   defaultRedisPort,
			Prefix: defaultRedisPrefix,
		},
		S3: S3Config{Region: defaultS3Region},
		Gallery: GalleryConfig{
			Mode:          GalleryInline,
			MaxImageBytes: defaultMaxImageBytes,
		},
		Session: SessionConfig{
			Persistence: PersistenceLocal,
			CookieName:  defaultCookieName,
		},
	}
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.SiteURL); v != "" {
		cfg.SiteURL = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Static); v != "" {
		cfg.Paths.Static = v
	}

	if v := strings.TrimSpace(raw.Backends.Documents); v != "" {
		cfg.Backends.Documents = v
	}
	if v := strings.TrimSpace(raw.Backends.Realtime); v != "" {
		cfg.Backends.Realtime = v
	}
	if v := strings.TrimSpace(raw.Backends.Objects); v != "" {
		cfg.Backends.Objects = v
	}
	if v := strings.TrimSpace(raw.Backends.Auth); v != "" {
		cfg.Backends.Auth = v
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	cfg.Firebase = FirebaseConfig{
		ProjectID:       strings.TrimSpace(raw.Firebase.ProjectID),
		CredentialsFile: strings.TrimSpace(raw.Firebase.CredentialsFile),
		CredentialsJSON: strings.TrimSpace(raw.Firebase.CredentialsJSON),
		DatabaseURL:     strings.TrimSpace(raw.Firebase.DatabaseURL),
		StorageBucket:   strings.TrimSpace(raw.Firebase.StorageBucket),
		WebAPIKey:       strings.TrimSpace(raw.Firebase.WebAPIKey),
	}

	s3 := cfg.S3
	s3.Endpoint = strings.TrimRight(strings.TrimSpace(raw.S3.Endpoint), "/")
	if v := strings.TrimSpace(raw.S3.Region); v != "" {
		s3.Region = v
	}
	s3.Bucket = strings.TrimSpace(raw.S3.Bucket)
	s3.AccessKeyID = strings.TrimSpace(raw.S3.AccessKeyID)
	s3.SecretAccessKey = strings.TrimSpace(raw.S3.SecretAccessKey)
	s3.PublicBaseURL = strings.TrimRight(strings.TrimSpace(raw.S3.PublicBaseURL), "/")
	if raw.S3.PathStyle != nil {
		s3.PathStyle = *raw.S3.PathStyle
	}
	cfg.S3 = s3

	if v := strings.TrimSpace(raw.Gallery.Mode); v != "" {
		cfg.Gallery.Mode = v
	}
	if raw.Gallery.MaxImageBytes > 0 {
		cfg.Gallery.MaxImageBytes = raw.Gallery.MaxImageBytes
	}

	if v := strings.TrimSpace(raw.Session.Persistence); v != "" {
		cfg.Session.Persistence = v
	}
	if v := strings.TrimSpace(raw.Session.CookieName); v != "" {
		cfg.Session.CookieName = v
	}
	if raw.Session.Secure != nil {
		cfg.Session.Secure = *raw.Session.Secure
	}

	cfg.Mail = MailConfig{
		Enable:    raw.Mail.Enable,
		Host:      strings.TrimSpace(raw.Mail.Host),
		Port:      raw.Mail.Port,
		User:      strings.TrimSpace(raw.Mail.User),
		Pass:      raw.Mail.Pass,
		From:      strings.TrimSpace(raw.Mail.From),
		ReplyTo:   strings.TrimSpace(raw.Mail.ReplyTo),
		UseResend: raw.Mail.UseResend,
		ResendKey: strings.TrimSpace(raw.Mail.ResendKey),
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Backends = normalizeBackends(cfg.Backends)
	cfg.Gallery.Mode = strings.ToLower(cfg.Gallery.Mode)
	cfg.Session.Persistence = strings.ToLower(cfg.Session.Persistence)
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Database.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.Database.ParseTime != nil {
		cfg.ParseTime = *raw.Database.ParseTime
	}
	if v := strings.TrimSpace(raw.Database.Loc); v != "" {
		cfg.Loc = v
	}
	if raw.Database.Params != nil {
		cfg.Params = copyStringMap(raw.Database.Params)
	}
	if raw.Database.AutoMigrate != nil {
		cfg.AutoMigrate = *raw.Database.AutoMigrate
	}
	return normalizeDatabaseConfig(cfg)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	if v := strings.TrimSpace(raw.Redis.Prefix); v != "" {
		cfg.Prefix = v
	}
	return normalizeRedisConfig(cfg)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		cfg.JWTSecret = v
	}
	if cfg.Firebase.CredentialsFile == "" && cfg.Firebase.CredentialsJSON == "" {
		cfg.Firebase.CredentialsFile = strings.TrimSpace(os.Getenv(EnvGoogleCredentials))
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}

	switch c.Backends.Documents {
	case DocumentsFirestore, DocumentsMySQL, DocumentsMemory:
	default:
		return fmt.Errorf("unknown backends.documents %q", c.Backends.Documents)
	}
	switch c.Backends.Realtime {
	case RealtimeRTDB, RealtimeMemory:
	case RealtimeRedis:
		if !c.Redis.Enable {
			return errors.New("backends.realtime is redis but redis.enable is false")
		}
	default:
		return fmt.Errorf("unknown backends.realtime %q", c.Backends.Realtime)
	}
	switch c.Backends.Objects {
	case ObjectsFirebase, ObjectsNone:
	case ObjectsS3:
		if c.S3.Bucket == "" {
			return errors.New("backends.objects is s3 but s3.bucket is empty")
		}
	default:
		return fmt.Errorf("unknown backends.objects %q", c.Backends.Objects)
	}
	switch c.Backends.Auth {
	case AuthFirebase:
		if c.Firebase.WebAPIKey == "" {
			return errors.New("firebase auth needs firebase.web_api_key for password sign-in")
		}
	case AuthLocal:
		if c.Backends.Documents != DocumentsMySQL && !c.IsDev() {
			return errors.New("local auth outside development stores accounts in mysql, set backends.documents to mysql")
		}
	default:
		return fmt.Errorf("unknown backends.auth %q", c.Backends.Auth)
	}

	switch c.Gallery.Mode {
	case GalleryInline:
	case GalleryStorage:
		if c.Backends.Objects == ObjectsNone {
			return errors.New("gallery.mode is storage but backends.objects is none")
		}
	default:
		return fmt.Errorf("unknown gallery.mode %q", c.Gallery.Mode)
	}
	switch c.Session.Persistence {
	case PersistenceLocal, PersistenceSession:
	default:
		return fmt.Errorf("unknown session.persistence %q", c.Session.Persistence)
	}

	if c.UsesFirebase() && c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" && c.Firebase.CredentialsJSON == "" {
		return errors.New("firebase backends need firebase.project_id or credentials")
	}
	if c.Backends.Realtime == RealtimeRTDB && c.Firebase.DatabaseURL == "" {
		return errors.New("backends.realtime is rtdb but firebase.database_url is empty")
	}
	if c.Backends.Objects == ObjectsFirebase && c.Firebase.StorageBucket == "" {
		return errors.New("backends.objects is firebase but firebase.storage_bucket is empty")
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return errors.New("jwt_secret is required outside development")
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == "development" }

// UsesFirebase reports whether any backend needs a Firebase app.
func (c *AppConfig) UsesFirebase() bool {
	return c.Backends.Documents == DocumentsFirestore ||
		c.Backends.Realtime == RealtimeRTDB ||
		c.Backends.Objects == ObjectsFirebase ||
		c.Backends.Auth == AuthFirebase
}

// UsesMySQL reports whether a gorm connection is needed.
func (c *AppConfig) UsesMySQL() bool {
	return c.Backends.Documents == DocumentsMySQL
}

// LogDir resolves the directory for daily log files.
func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// StaticDir resolves the directory served under /static.
func (c *AppConfig) StaticDir() string {
	return ResolveRuntimePath(c.Paths.Static, "static")
}

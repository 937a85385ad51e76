package config

// Backend kinds accepted under `backends:`.
const (
	DocumentsFirestore = "firestore"
	DocumentsMySQL     = "mysql"
	DocumentsMemory    = "memory"

	RealtimeRTDB   = "rtdb"
	RealtimeRedis  = "redis"
	RealtimeMemory = "memory"

	ObjectsFirebase = "firebase"
	ObjectsS3       = "s3"
	ObjectsNone     = "none"

	AuthFirebase = "firebase"
	AuthLocal    = "local"

	GalleryInline  = "inline"
	GalleryStorage = "storage"

	PersistenceLocal   = "local"
	PersistenceSession = "session"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	SiteURL        string
	AllowedOrigins []string
	JWTSecret      string
	Timezone       string
	Paths          RuntimePathsConfig
	Backends       BackendsConfig
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Firebase       FirebaseConfig
	S3             S3Config
	Gallery        GalleryConfig
	Session        SessionConfig
	Mail           MailConfig

	DSN      string
	RedisURL string
}

type RuntimePathsConfig struct {
	Logs   string
	Static string
}

// BackendsConfig picks the implementation behind each store.
type BackendsConfig struct {
	Documents string
	Realtime  string
	Objects   string
	Auth      string
}

type DatabaseRuntimeConfig struct {
	DSN         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	Charset     string
	ParseTime   bool
	Loc         string
	Params      map[string]string
	AutoMigrate bool
}

type RedisRuntimeConfig struct {
	Enable   bool
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
	Prefix   string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
	DatabaseURL     string
	StorageBucket   string
	WebAPIKey       string
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	PathStyle       bool
}

type GalleryConfig struct {
	Mode          string
	MaxImageBytes int
}

type SessionConfig struct {
	Persistence string
	CookieName  string
	Secure      bool
}

type MailConfig struct {
	Enable    bool
	Host      string
	Port      int
	User      string
	Pass      string
	From      string
	ReplyTo   string
	UseResend bool
	ResendKey string
}

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	SiteURL        string            `yaml:"site_url"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	JWTSecret      string            `yaml:"jwt_secret"`
	Timezone       string            `yaml:"timezone"`
	DSN            string            `yaml:"dsn"`
	RedisURL       string            `yaml:"redis_url"`
	Paths          rawPathsConfig    `yaml:"paths"`
	Backends       rawBackendsConfig `yaml:"backends"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	Firebase       rawFirebaseConfig `yaml:"firebase"`
	S3             rawS3Config       `yaml:"s3"`
	Gallery        rawGalleryConfig  `yaml:"gallery"`
	Session        rawSessionConfig  `yaml:"session"`
	Mail           rawMailConfig     `yaml:"mail"`
}

type rawPathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type rawBackendsConfig struct {
	Documents string `yaml:"documents"`
	Realtime  string `yaml:"realtime"`
	Objects   string `yaml:"objects"`
	Auth      string `yaml:"auth"`
}

type rawDatabaseConfig struct {
	DSN         string            `yaml:"dsn"`
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	User        string            `yaml:"user"`
	Password    string            `yaml:"password"`
	Name        string            `yaml:"name"`
	Charset     string            `yaml:"charset"`
	ParseTime   *bool             `yaml:"parse_time"`
	Loc         string            `yaml:"loc"`
	Params      map[string]string `yaml:"params"`
	AutoMigrate *bool             `yaml:"auto_migrate"`
}

type rawRedisConfig struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
	Prefix   string `yaml:"prefix"`
}

type rawFirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"credentials_json"`
	DatabaseURL     string `yaml:"database_url"`
	StorageBucket   string `yaml:"storage_bucket"`
	WebAPIKey       string `yaml:"web_api_key"`
}

type rawS3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	PathStyle       *bool  `yaml:"path_style"`
}

type rawGalleryConfig struct {
	Mode          string `yaml:"mode"`
	MaxImageBytes int    `yaml:"max_image_bytes"`
}

type rawSessionConfig struct {
	Persistence string `yaml:"persistence"`
	CookieName  string `yaml:"cookie_name"`
	Secure      *bool  `yaml:"secure"`
}

type rawMailConfig struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	UseResend bool   `yaml:"use_resend"`
	ResendKey string `yaml:"resend_key"`
}

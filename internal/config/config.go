package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the trip planner.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the monitoring server.
// - RequestTimeout: Timeout of every outgoing HTTP request.
// - Geocoder: Address lookup provider settings.
// - Router: Directions provider settings.
// - Map: Initial view and size of the map surface.
// - PlansFile: Optional YAML file with the pricing catalog.
// - Geolocation: "off", "ipapi" or a fixed "lon,lat" position.
// - PhoneRegion: Default region for customer phone numbers.
// - Notifier: Channel used to deliver orders.
// - Relay: Downstream delivery of orders stored in the outbox.
// - Database: Configuration settings for the PostgreSQL outbox.
type Config struct {
	Env            string
	Port           int
	RequestTimeout time.Duration
	Geocoder       GeocoderConfig
	Router         RouterConfig
	Map            MapConfig
	PlansFile      string
	Geolocation    string
	PhoneRegion    string
	Notifier       NotifierConfig
	Relay          RelayConfig
	Database       PostgresConfig
}

// RelayConfig drives the outbox relay. An empty Type disables it.
type RelayConfig struct {
	Type     string // webhook, smtp, kafka
	Workers  int
	Interval time.Duration
}

// GeocoderConfig selects and tunes the geocoding provider.
type GeocoderConfig struct {
	Type         string // google, nominatim, visicom
	APIKey       string
	BaseURL      string // self-hosted Nominatim
	RateLimit    int    // requests per second
	CountryCodes string
	Language     string
}

// RouterConfig selects and tunes the directions provider.
type RouterConfig struct {
	Type      string // mapbox, osrm, google
	APIKey    string
	BaseURL   string // OSRM server, empty for the public demo
	Profile   string
	RateLimit int
}

// MapConfig describes the map surface.
type MapConfig struct {
	CenterLon float64
	CenterLat float64
	Zoom      float64
	Width     float64
	Height    float64
	Padding   float64
}

// NotifierConfig selects the order delivery channel.
type NotifierConfig struct {
	Type         string // log, webhook, smtp, kafka, outbox
	WebhookURL   string
	SMTP         SMTPConfig
	KafkaBrokers []string
	KafkaTopic   string
}

// SMTPConfig holds the mail server used by the smtp notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	To       string
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the .env file (VOYAGE_DOTENV_FILE overrides its path) and
// the environment, and returns the configuration. Malformed values panic.
func MustLoad() *Config {
	_ = godotenv.Load(setDefaultEnv("VOYAGE_DOTENV_FILE", ".env"))

	healthPort, err := strconv.Atoi(setDefaultEnv("VOYAGE_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	timeout, err := time.ParseDuration(setDefaultEnv("VOYAGE_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse request timeout from configuration")
	}

	geocoderRate, err := strconv.Atoi(setDefaultEnv("VOYAGE_GEOCODER_RATE", "1"))
	if err != nil {
		panic("failed to parse geocoder rate limit from configuration, must be an integer")
	}

	routerRate, err := strconv.Atoi(setDefaultEnv("VOYAGE_ROUTER_RATE", "5"))
	if err != nil {
		panic("failed to parse router rate limit from configuration, must be an integer")
	}

	relayInterval, err := time.ParseDuration(setDefaultEnv("VOYAGE_RELAY_INTERVAL", "30s"))
	if err != nil {
		panic("failed to parse relay interval from configuration")
	}

	relayWorkers, err := strconv.Atoi(setDefaultEnv("VOYAGE_RELAY_WORKERS", "2"))
	if err != nil {
		panic("failed to parse relay workers from configuration, must be an integer")
	}

	return &Config{
		Env:            setDefaultEnv("VOYAGE_ENV", "production"),
		Port:           healthPort,
		RequestTimeout: timeout,
		Geocoder: GeocoderConfig{
			Type:         setDefaultEnv("VOYAGE_GEOCODER_TYPE", "nominatim"),
			APIKey:       os.Getenv("VOYAGE_GEOCODER_KEY"),
			BaseURL:      os.Getenv("VOYAGE_GEOCODER_URL"),
			RateLimit:    geocoderRate,
			CountryCodes: setDefaultEnv("VOYAGE_COUNTRY_CODES", "ru"),
			Language:     setDefaultEnv("VOYAGE_LANGUAGE", "ru"),
		},
		Router: RouterConfig{
			Type:      setDefaultEnv("VOYAGE_ROUTER_TYPE", "osrm"),
			APIKey:    os.Getenv("VOYAGE_ROUTER_KEY"),
			BaseURL:   os.Getenv("VOYAGE_ROUTER_URL"),
			Profile:   setDefaultEnv("VOYAGE_ROUTER_PROFILE", "driving"),
			RateLimit: routerRate,
		},
		Map:         mustLoadMap(),
		PlansFile:   os.Getenv("VOYAGE_PLANS_FILE"),
		Geolocation: setDefaultEnv("VOYAGE_GEOLOCATION", "off"),
		PhoneRegion: setDefaultEnv("VOYAGE_PHONE_REGION", "RU"),
		Notifier:    mustLoadNotifier(),
		Relay: RelayConfig{
			Type:     os.Getenv("VOYAGE_RELAY_TYPE"),
			Workers:  relayWorkers,
			Interval: relayInterval,
		},
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func mustLoadMap() MapConfig {
	lonStr, latStr, ok := strings.Cut(setDefaultEnv("VOYAGE_MAP_CENTER", "67,40"), ",")
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if !ok || errLon != nil || errLat != nil {
		panic("failed to parse map center from configuration, expected \"lon,lat\"")
	}

	zoom, err := strconv.ParseFloat(setDefaultEnv("VOYAGE_MAP_ZOOM", "10"), 64)
	if err != nil {
		panic("failed to parse map zoom from configuration")
	}

	widthStr, heightStr, ok := strings.Cut(setDefaultEnv("VOYAGE_MAP_SIZE", "800x500"), "x")
	width, errWidth := strconv.ParseFloat(widthStr, 64)
	height, errHeight := strconv.ParseFloat(heightStr, 64)
	if !ok || errWidth != nil || errHeight != nil {
		panic("failed to parse map size from configuration, expected \"<width>x<height>\"")
	}

	padding, err := strconv.ParseFloat(setDefaultEnv("VOYAGE_MAP_PADDING", "40"), 64)
	if err != nil {
		panic("failed to parse map padding from configuration")
	}

	return MapConfig{
		CenterLon: lon,
		CenterLat: lat,
		Zoom:      zoom,
		Width:     width,
		Height:    height,
		Padding:   padding,
	}
}

func mustLoadNotifier() NotifierConfig {
	smtpPort, err := strconv.Atoi(setDefaultEnv("SMTP_PORT", "587"))
	if err != nil {
		panic("failed to parse SMTP port from configuration")
	}

	var brokers []string
	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return NotifierConfig{
		Type:       setDefaultEnv("VOYAGE_NOTIFIER_TYPE", "log"),
		WebhookURL: os.Getenv("WEBHOOK_URL"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: setDefaultEnv("SMTP_FROM_NAME", "Voyage"),
			To:       os.Getenv("SMTP_TO"),
		},
		KafkaBrokers: brokers,
		KafkaTopic:   setDefaultEnv("KAFKA_TOPIC", "trip-orders"),
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

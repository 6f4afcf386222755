package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	IntakeDir string
	OutputDir string

	PartsCSVPath      string
	CustomersXLSXPath string

	RefAPIBaseURL     string
	RefAPIToken       string
	RefAPIRateLimit   int
	RefAPITimeoutMs   int
	RefAPIPageSize    int

	MappedThreshold int
	ReviewThreshold int
	AddressBonus    int
	CandidateLimit  int

	SupplierMarkers []string
	ShippingMarkers []string

	ERPEntryPerson string

	WatcherIntervalSec int
	WatcherBatch       int
	WatcherAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		IntakeDir: getEnv("INTAKE_DIR", filepath.Join(cwd, "data", "intake")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		PartsCSVPath:      getEnv("PARTS_CSV_PATH", filepath.Join(cwd, "data", "parts.csv")),
		CustomersXLSXPath: getEnv("CUSTOMERS_XLSX_PATH", filepath.Join(cwd, "data", "customer_list.xlsx")),

		RefAPIBaseURL:   getEnv("REF_API_BASE_URL", ""),
		RefAPIToken:     getEnv("REF_API_TOKEN", ""),
		RefAPIRateLimit: getEnvInt("REF_API_RATE_LIMIT_RPS", 5),
		RefAPITimeoutMs: getEnvInt("REF_API_TIMEOUT_MS", 30000),
		RefAPIPageSize:  getEnvInt("REF_API_PAGE_SIZE", 1000),

		MappedThreshold: getEnvInt("MATCH_MAPPED_THRESHOLD", 90),
		ReviewThreshold: getEnvInt("MATCH_REVIEW_THRESHOLD", 50),
		AddressBonus:    getEnvInt("MATCH_ADDRESS_BONUS", 10),
		CandidateLimit:  getEnvInt("MATCH_CANDIDATE_LIMIT", 3),

		SupplierMarkers: getEnvList("SUPPLIER_MARKERS", []string{"KOIKE", "ARONSON"}),
		ShippingMarkers: getEnvList("SHIPPING_MARKERS", []string{
			"SHIPPING", "HANDLING", "FREIGHT", "DELIVERY", "S&H", "S & H",
		}),

		ERPEntryPerson: getEnv("ERP_ENTRY_PERSON", "Arzana"),

		WatcherIntervalSec: getEnvInt("WATCHER_INTERVAL_SEC", 30),
		WatcherBatch:       getEnvInt("WATCHER_BATCH", 20),
		WatcherAutoExport:  getEnvBool("WATCHER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                  App                  `mapstructure:",squash"`
	Server               Server               `mapstructure:",squash"`
	Database             Database             `mapstructure:",squash"`
	Ingestion            Ingestion            `mapstructure:",squash"`
	Fusion               Fusion               `mapstructure:",squash"`
	ReconciliationSync   ReconciliationSync   `mapstructure:",squash"`
	ConsistencyCheckSync ConsistencyCheckSync `mapstructure:",squash"`
	BackfillScanSync     BackfillScanSync     `mapstructure:",squash"`
	// MarketplaceTimezones é a tabela estática marketplace -> fuso IANA.
	// Imutável após a construção; overrides por conta vivem no banco.
	MarketplaceTimezones map[string]string `mapstructure:"-"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Ingestion struct {
	QueueSize          int  `mapstructure:"ingestion_queue_size"`
	Workers            int  `mapstructure:"ingestion_workers"`
	DedupRetentionDays int  `mapstructure:"ingestion_dedup_retention_days"`
	ConsumerEnabled    bool `mapstructure:"ingestion_consumer_enabled"`
}

type Fusion struct {
	PushMaxAgeMinutes      int     `mapstructure:"fusion_push_max_age_minutes"`
	BatchMaxAgeMinutes     int     `mapstructure:"fusion_batch_max_age_minutes"`
	AlgorithmExclusionDays int     `mapstructure:"fusion_algorithm_exclusion_days"`
	PushWeight             float64 `mapstructure:"fusion_push_weight"`
}

type ReconciliationSync struct {
	CronSchedule          string `mapstructure:"reconciliation_sync_cron"`
	AttributionWindowDays int    `mapstructure:"reconciliation_attribution_window_days"`
	LookbackDays          int    `mapstructure:"reconciliation_sync_lookback_days"`
	MaxConcurrentJobs     int    `mapstructure:"reconciliation_sync_max_concurrent_jobs"`
	Enabled               bool   `mapstructure:"reconciliation_sync_enabled"`
}

type ConsistencyCheckSync struct {
	CronSchedule        string  `mapstructure:"consistency_check_cron"`
	WindowDays          int     `mapstructure:"consistency_check_window_days"`
	TrafficThresholdPct float64 `mapstructure:"consistency_check_traffic_threshold_pct"`
	FinanceThresholdPct float64 `mapstructure:"consistency_check_finance_threshold_pct"`
	RepairEnabled       bool    `mapstructure:"consistency_check_repair_enabled"`
	Enabled             bool    `mapstructure:"consistency_check_enabled"`
}

type BackfillScanSync struct {
	CronSchedule string `mapstructure:"backfill_scan_cron"`
	LookbackDays int    `mapstructure:"backfill_scan_lookback_days"`
	Enabled      bool   `mapstructure:"backfill_scan_enabled"`
}

// defaultMarketplaceTimezones é a tabela estática de fusos por marketplace.
// Marketplaces não mapeados caem para UTC na resolução.
var defaultMarketplaceTimezones = map[string]string{
	"US": "America/Los_Angeles",
	"CA": "America/Los_Angeles",
	"MX": "America/Los_Angeles",
	"BR": "America/Sao_Paulo",
	"UK": "Europe/London",
	"DE": "Europe/Paris",
	"FR": "Europe/Paris",
	"IT": "Europe/Paris",
	"ES": "Europe/Paris",
	"NL": "Europe/Paris",
	"SE": "Europe/Stockholm",
	"PL": "Europe/Warsaw",
	"TR": "Europe/Istanbul",
	"AE": "Asia/Dubai",
	"SA": "Asia/Riyadh",
	"IN": "Asia/Kolkata",
	"JP": "Asia/Tokyo",
	"SG": "Asia/Singapore",
	"AU": "Australia/Sydney",
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ad_performance")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	// Defaults para o consumidor da stream push
	viper.SetDefault("INGESTION_QUEUE_SIZE", 4096)         // Capacidade da fila interna
	viper.SetDefault("INGESTION_WORKERS", 8)               // Workers de ingestão
	viper.SetDefault("INGESTION_DEDUP_RETENTION_DAYS", 35) // Retenção de message_ids processados
	viper.SetDefault("INGESTION_CONSUMER_ENABLED", true)

	// Defaults para o motor de fusão
	viper.SetDefault("FUSION_PUSH_MAX_AGE_MINUTES", 15)    // Push é considerado velho após 15 min
	viper.SetDefault("FUSION_BATCH_MAX_AGE_MINUTES", 90)   // Batch é considerado velho após 90 min
	viper.SetDefault("FUSION_ALGORITHM_EXCLUSION_DAYS", 2) // Dias recentes excluídos para algoritmos
	viper.SetDefault("FUSION_PUSH_WEIGHT", 0.8)            // Peso do push na mesclagem ponderada

	// Defaults para a reconciliação canônica
	viper.SetDefault("RECONCILIATION_SYNC_CRON", "0 5 * * *") // Todos os dias às 5h da manhã
	viper.SetDefault("RECONCILIATION_ATTRIBUTION_WINDOW_DAYS", 3)
	viper.SetDefault("RECONCILIATION_SYNC_LOOKBACK_DAYS", 14)
	viper.SetDefault("RECONCILIATION_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("RECONCILIATION_SYNC_ENABLED", false)

	// Defaults para a verificação de consistência entre origens
	viper.SetDefault("CONSISTENCY_CHECK_CRON", "0 7 * * *") // Todos os dias às 7h da manhã
	viper.SetDefault("CONSISTENCY_CHECK_WINDOW_DAYS", 7)
	viper.SetDefault("CONSISTENCY_CHECK_TRAFFIC_THRESHOLD_PCT", 5.0)
	viper.SetDefault("CONSISTENCY_CHECK_FINANCE_THRESHOLD_PCT", 5.0)
	viper.SetDefault("CONSISTENCY_CHECK_REPAIR_ENABLED", false)
	viper.SetDefault("CONSISTENCY_CHECK_ENABLED", false)

	// Defaults para a varredura de backfill
	viper.SetDefault("BACKFILL_SCAN_CRON", "30 7 * * *") // Todos os dias às 7h30 da manhã
	viper.SetDefault("BACKFILL_SCAN_LOOKBACK_DAYS", 7)
	viper.SetDefault("BACKFILL_SCAN_ENABLED", false)

	viper.SetDefault("MARKETPLACE_TIMEZONE_OVERRIDES", "")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.MarketplaceTimezones = buildMarketplaceTimezones(viper.GetString("MARKETPLACE_TIMEZONE_OVERRIDES"))

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// PushMaxAge retorna a idade máxima do push como duração
func (c *Config) PushMaxAge() time.Duration {
	return time.Duration(c.Fusion.PushMaxAgeMinutes) * time.Minute
}

// BatchMaxAge retorna a idade máxima do batch como duração
func (c *Config) BatchMaxAge() time.Duration {
	return time.Duration(c.Fusion.BatchMaxAgeMinutes) * time.Minute
}

// buildMarketplaceTimezones monta a tabela de fusos a partir da tabela padrão
// mais overrides no formato "CODE=Zona,CODE=Zona" vindos do ambiente
func buildMarketplaceTimezones(overrides string) map[string]string {
	table := make(map[string]string, len(defaultMarketplaceTimezones))
	for code, tz := range defaultMarketplaceTimezones {
		table[code] = tz
	}

	if overrides == "" {
		return table
	}

	for _, pair := range strings.Split(overrides, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logrus.Warnf("Override de fuso de marketplace inválido, ignorando: %q", pair)
			continue
		}
		table[strings.ToUpper(parts[0])] = parts[1]
	}

	return table
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig содержит конфигурацию приложения
type AppConfig struct {
	ServerPort  string
	GinMode     string
	Rtu         RtuConfig
	Acquisition AcquisitionConfig
	Automation  AutomationConfig
	Tank        TankConfig
	Journal     JournalConfig
	Kafka       KafkaConfig
	Database    DatabaseConfig
	Logging     LoggerConfig
	Simulator   SimulatorConfig
}

// RtuConfig описывает подключение к устройству и таблицу точек
type RtuConfig struct {
	Address     string
	UnitAddress byte
	Timeout     time.Duration
	IdleTimeout time.Duration
	PointsFile  string
}

type AcquisitionConfig struct {
	// Tick - период цикла опроса. Интервалы точек и расходы модели
	// заданы в секундах и пересчитываются на этот период.
	Tick      time.Duration
	PlantMode string // simulated / field
}

type AutomationConfig struct {
	Delay time.Duration
}

// TankConfig связывает роли резервуара с именами точек и задает параметры модели
type TankConfig struct {
	LevelPoint    string
	StopPoint     string
	Pump1Point    string
	Pump2Point    string
	ValvePoint    string
	Pump1Inflow   float64
	Pump2Inflow   float64
	ValveOutflow  float64
	DrainageLevel float64
}

type JournalConfig struct {
	Driver         string // memory / postgres / sqlite
	SqlitePath     string
	QueueSize      int
	Capacity       int
	StaleThreshold int
}

type KafkaConfig struct {
	Enable bool
	Broker string
	Topic  string
}

// LoggerConfig содержит настройки логгера
type LoggerConfig struct {
	Enable     bool
	LogsDir    string
	Level      string
	SavingDays int
}

// DatabaseConfig содержит конфигурацию для подключения к базе данных
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

type SimulatorConfig struct {
	Listen string
}

const (
	PlantSimulated = "simulated"
	PlantField     = "field"

	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalSqlite   = "sqlite"
)

// LoadConfiguration загружает конфигурацию из .env файла или переменных окружения
func LoadConfiguration() (*AppConfig, error) {
	_ = godotenv.Load()

	config := &AppConfig{
		ServerPort: getEnv("APP_PORT", "8082"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		Rtu: RtuConfig{
			Address:     getEnv("RTU_ADDRESS", "127.0.0.1:1502"),
			UnitAddress: byte(getEnvAsInt("RTU_UNIT_ADDRESS", 1)),
			Timeout:     getEnvAsMillis("RTU_TIMEOUT_MS", 2000),
			IdleTimeout: getEnvAsMillis("RTU_IDLE_TIMEOUT_MS", 60000),
			PointsFile:  getEnv("RTU_POINTS_FILE", ""),
		},
		Acquisition: AcquisitionConfig{
			Tick:      getEnvAsMillis("ACQUISITION_TICK_MS", 1000),
			PlantMode: getEnv("PLANT_MODE", PlantSimulated),
		},
		Automation: AutomationConfig{
			Delay: getEnvAsMillis("AUTOMATION_DELAY_MS", 1000),
		},
		Tank: TankConfig{
			LevelPoint:    getEnv("TANK_LEVEL_POINT", "L"),
			StopPoint:     getEnv("TANK_STOP_POINT", "STOP"),
			Pump1Point:    getEnv("TANK_PUMP1_POINT", "P1"),
			Pump2Point:    getEnv("TANK_PUMP2_POINT", "P2"),
			ValvePoint:    getEnv("TANK_VALVE_POINT", "V1"),
			Pump1Inflow:   getEnvAsFloat("TANK_PUMP1_INFLOW", 160),
			Pump2Inflow:   getEnvAsFloat("TANK_PUMP2_INFLOW", 80),
			ValveOutflow:  getEnvAsFloat("TANK_VALVE_OUTFLOW", 50),
			DrainageLevel: getEnvAsFloat("TANK_DRAINAGE_LEVEL", 6000),
		},
		Journal: JournalConfig{
			Driver:         getEnv("JOURNAL_DRIVER", JournalMemory),
			SqlitePath:     getEnv("SQLITE_PATH", "./rtu_journal.db"),
			QueueSize:      getEnvAsInt("JOURNAL_QUEUE_SIZE", 256),
			Capacity:       getEnvAsInt("JOURNAL_MEMORY_CAPACITY", 1000),
			StaleThreshold: getEnvAsInt("STALE_FAILURE_THRESHOLD", 3),
		},
		Kafka: KafkaConfig{
			Enable: getEnvAsBool("KAFKA_ENABLE", false),
			Broker: getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:  getEnv("KAFKA_TOPIC", "rtu_events"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "root"),
			DBName:   getEnv("DB_NAME", "rtu_db"),
		},
		Logging: LoggerConfig{
			Enable:     getEnvAsBool("LOGGER_ENABLE", true),
			LogsDir:    getEnv("LOGGER_LOGS_DIR", "./logs"),
			Level:      getEnv("LOGGER_LOG_LEVEL", "DEBUG"),
			SavingDays: getEnvAsInt("LOGGER_SAVING_DAYS", 7),
		},
		Simulator: SimulatorConfig{
			Listen: getEnv("SIM_LISTEN", "127.0.0.1:1502"),
		},
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	valueStr := getEnv(name, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsMillis(name string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(name, defaultValue)) * time.Millisecond
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, _ := strconv.ParseBool(value)
	return val
}

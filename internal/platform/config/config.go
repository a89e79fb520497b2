package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	GitHubToken   string
	GitHubAPIBase string

	StoreBackend  string // memory | file | redis | postgres
	StoreFilePath string
	// StoreSnapshotKey names the single key/row the redis and postgres
	// backends keep the full job snapshot under.
	StoreSnapshotKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	WorkspaceRoot     string
	WorkerCount       int
	CleanupWorkspaces bool

	BranchPrefix   string
	CommitterName  string
	CommitterEmail string
	PRTitleMaxLen  int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort: getEnv("API_PORT", "8080"),

		GitHubToken:   getEnv("GITHUB_TOKEN", ""),
		GitHubAPIBase: getEnv("GITHUB_API_URL", "https://api.github.com"),

		StoreBackend:     getEnv("STORE_BACKEND", "file"),
		StoreFilePath:    getEnv("STORE_FILE_PATH", "/tmp/jobs.json"),
		StoreSnapshotKey: getEnv("STORE_SNAPSHOT_KEY", "repo_agent_jobs"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "repo_agent_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		WorkspaceRoot:     getEnv("WORKSPACE_ROOT", os.TempDir()),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 4),
		CleanupWorkspaces: getEnvAsBool("CLEANUP_WORKSPACES", true),

		BranchPrefix:   getEnv("BRANCH_PREFIX", "agent"),
		CommitterName:  getEnv("COMMITTER_NAME", "Repo Agent"),
		CommitterEmail: getEnv("COMMITTER_EMAIL", "agent@localhost"),
		PRTitleMaxLen:  getEnvAsInt("PR_TITLE_MAX_LEN", 50),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

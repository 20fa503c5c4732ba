package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	DBPath      string
	BusyTimeout time.Duration
	Seed        bool

	ImagesDir string
	PrefsPath string

	// RedisURL selects the Redis preference store when set.
	RedisURL string

	// CloudinaryURL selects the Cloudinary image store when set.
	CloudinaryURL          string
	CloudinaryUploadFolder string

	BcryptCost int
}

// Load reads the environment, after loading .env if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:                 getEnv("ASFALTO_DB_PATH", "asfaltofashion.db"),
		ImagesDir:              getEnv("ASFALTO_IMAGES_DIR", "images"),
		PrefsPath:              getEnv("ASFALTO_PREFS_PATH", "asfaltofashion_prefs.env"),
		RedisURL:               os.Getenv("REDIS_URL"),
		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "asfalto_fashion"),
	}

	var err error
	cfg.BusyTimeout, err = time.ParseDuration(getEnv("ASFALTO_BUSY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASFALTO_BUSY_TIMEOUT: %w", err)
	}
	cfg.Seed, err = strconv.ParseBool(getEnv("ASFALTO_SEED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASFALTO_SEED: %w", err)
	}
	cfg.BcryptCost, err = strconv.Atoi(getEnv("ASFALTO_BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid ASFALTO_BCRYPT_COST: %w", err)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid ASFALTO_BCRYPT_COST: %d outside [%d, %d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("NOVELHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("NOVELHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "novelhub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("NOVELHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type AssetConfig struct {
	BaseURL string // image service endpoint
	APIKey  string
	Folder  string
}

func LoadAssetConfig() AssetConfig {
	base := os.Getenv("NOVELHUB_ASSET_URL")
	if base == "" {
		base = "http://localhost:9090"
	}

	folder := os.Getenv("NOVELHUB_ASSET_FOLDER")
	if folder == "" {
		folder = "novelhub/cover_image"
	}

	return AssetConfig{
		BaseURL: base,
		APIKey:  os.Getenv("NOVELHUB_ASSET_API_KEY"),
		Folder:  folder,
	}
}

type NotifyConfig struct {
	UDPAddr string
}

func LoadNotifyConfig() NotifyConfig {
	addr := os.Getenv("NOVELHUB_NOTIFY_ADDR")
	if addr == "" {
		addr = ":9091"
	}
	return NotifyConfig{UDPAddr: addr}
}

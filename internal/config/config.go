package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int

	JWTSecret string // JWT署名シークレット（発行は外部の認証サービス）

	RedisAddr       string // 商品キャッシュ用
	RedisPassword   string
	CacheTTLSeconds int

	//金額ルール（センタボ）
	TaxRatePercent  int64 // IVA（%）
	FreeShippingMin int64 // この金額以上で送料無料
	ShippingFlat    int64 // 固定送料

	//注文の期限切れ掃除
	OrderExpiryMinutes   int // これより古い未払いPENDINGをキャンセル
	SweepIntervalMinutes int // 0なら内蔵スイーパーを起動しない

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を読む。DB・JWTは必須、残りは既定値あり。
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := atoiDefault("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return Config{}, err
	}
	taxRate, err := atoi64Default("TAX_RATE_PERCENT", 21)
	if err != nil {
		return Config{}, err
	}
	freeShip, err := atoi64Default("FREE_SHIPPING_MIN", 100000)
	if err != nil {
		return Config{}, err
	}
	shipFlat, err := atoi64Default("SHIPPING_FLAT", 5990)
	if err != nil {
		return Config{}, err
	}
	expiry, err := atoiDefault("ORDER_EXPIRY_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	sweepEvery, err := atoiDefault("SWEEP_INTERVAL_MINUTES", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		CacheTTLSeconds: cacheTTL,

		TaxRatePercent:  taxRate,
		FreeShippingMin: freeShip,
		ShippingFlat:    shipFlat,

		OrderExpiryMinutes:   expiry,
		SweepIntervalMinutes: sweepEvery,

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if os.Getenv("DATABASE_URL") == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if cfg.OrderExpiryMinutes < 1 {
		return Config{}, fmt.Errorf("ORDER_EXPIRY_MINUTES must be >= 1")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atoi64Default(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/sari-store/sari-backend/models"
	awspkg "github.com/sari-store/sari-backend/pkg/aws"
)

type Config struct {
	Port string
	Env  string

	CartTable      string
	InventoryTable string
	OrdersTable    string

	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	OrderTopicARN string

	Fulfillment models.FulfillmentDefaults
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		CartTable:      getEnv("DDB_TABLE_CART", "Sari-cart"),
		InventoryTable: getEnv("DDB_TABLE_INVENTORY", "Sari-inventory"),
		OrdersTable:    getEnv("DDB_TABLE_ORDERS", "Sari-orders"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OrderTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),

		Fulfillment: models.FulfillmentDefaults{
			PaymentMethod:  getEnv("CHECKOUT_PAYMENT_METHOD", models.PaymentMethodCash),
			PaymentStatus:  getEnv("CHECKOUT_PAYMENT_STATUS", models.PaymentStatusPaid),
			DeliveryMethod: getEnv("CHECKOUT_DELIVERY_METHOD", models.DeliveryMethodPickup),
			DeliveryStatus: getEnv("CHECKOUT_DELIVERY_STATUS", models.DeliveryStatusPending),
			PickupLocation: getEnv("CHECKOUT_PICKUP_LOCATION", models.DefaultPickupLocation),
			ETA:            getEnv("CHECKOUT_ETA", models.DefaultDeliveryWindow),
		},
	}

	ttl, err := time.ParseDuration(getEnv("CHECKOUT_IDEMPOTENCY_TTL", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}
	cfg.IdempotencyTTL = ttl

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if secret, err := sm.GetSecret(context.Background(), "sari/REDIS_CREDENTIALS"); err == nil && secret != "" {
				var m map[string]string
				if err := json.Unmarshal([]byte(secret), &m); err == nil {
					if v, ok := m["REDIS_ADDR"]; ok && v != "" {
						cfg.RedisAddr = v
					}
					if v, ok := m["REDIS_PASSWORD"]; ok && v != "" {
						cfg.RedisPassword = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

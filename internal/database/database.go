// Package database ouvre les connexions d'infrastructure optionnelles :
// Redis, Elasticsearch et MinIO. Chaque client est retourné à l'appelant.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/config"
)

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	log.WithField("addr", cfg.RedisHost).Info("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func ConnectElastic(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("création client Elasticsearch: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("connexion Elasticsearch: %s", res.Status())
	}

	log.WithField("url", cfg.ElasticURL).Info("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

// ConnectMinIO vérifie que le bucket des images produits existe. Le serveur
// ne fait que signer des URL de lecture, il ne crée pas le bucket.
func ConnectMinIO(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket MinIO %q absent", cfg.MinioBucket)
	}

	log.WithFields(logrus.Fields{"endpoint": cfg.MinioEndpoint, "bucket": cfg.MinioBucket}).Info("🪣 Connecté à MinIO")
	return client, nil
}

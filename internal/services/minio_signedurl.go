package services

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Presigner signe des URL de lecture temporaires (*minio.Client).
type Presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// objectKey retourne la clé d'un objet du bucket, ou "" si ref n'en désigne pas.
// Formats acceptés : "minio:products/crab.jpg" et "s3://<bucket>/products/crab.jpg".
func objectKey(ref, bucket string) string {
	if key, ok := strings.CutPrefix(ref, "minio:"); ok {
		return strings.TrimPrefix(key, "/")
	}
	if key, ok := strings.CutPrefix(ref, "s3://"+bucket+"/"); ok {
		return key
	}
	return ""
}

// GenerateSignedURL signe l'objet key du bucket pour la durée donnée.
func GenerateSignedURL(ctx context.Context, p Presigner, bucket, key string, duration time.Duration) (string, error) {
	presignedURL, err := p.PresignedGetObject(ctx, bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

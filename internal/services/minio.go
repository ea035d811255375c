// Package services construit les URL publiques des images produits.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
)

const defaultSignedURLTTL = time.Hour

// Tailles d'image des vues : carte produit, fiche produit et ligne de panier.
const (
	CardWidth, CardHeight     = 400, 250
	DetailWidth, DetailHeight = 800, 500
	ThumbSize                 = 120
)

// ImageResolver transforme la référence image d'un produit en URL affichable.
// Les références MinIO sont signées, les identifiants de photo passent par le CDN.
type ImageResolver struct {
	cdnBase   string
	presigner Presigner
	bucket    string
	ttl       time.Duration
	log       *logrus.Entry
}

func NewImageResolver(cdnBase string, log *logrus.Logger) *ImageResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImageResolver{
		cdnBase: strings.TrimRight(cdnBase, "/"),
		ttl:     defaultSignedURLTTL,
		log:     log.WithField("component", "images"),
	}
}

// WithMinio active la signature des objets du bucket.
func (r *ImageResolver) WithMinio(client *minio.Client, bucket string) *ImageResolver {
	return r.WithPresigner(client, bucket)
}

func (r *ImageResolver) WithPresigner(p Presigner, bucket string) *ImageResolver {
	r.presigner = p
	r.bucket = bucket
	return r
}

// URL retourne l'adresse de l'image pour les dimensions demandées, "" si ref est vide.
func (r *ImageResolver) URL(ctx context.Context, ref string, width, height int) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	}

	if key := objectKey(ref, r.bucket); key != "" {
		if r.presigner == nil {
			r.log.WithField("ref", ref).Warn("⚠️ image MinIO sans client configuré")
			return ""
		}
		signed, err := GenerateSignedURL(ctx, r.presigner, r.bucket, key, r.ttl)
		if err != nil {
			r.log.WithError(err).WithField("key", key).Warn("❌ signature URL image échouée")
			return ""
		}
		return signed
	}

	return fmt.Sprintf("%s/%s?w=%d&h=%d&fit=crop", r.cdnBase, strings.TrimPrefix(ref, "/"), width, height)
}

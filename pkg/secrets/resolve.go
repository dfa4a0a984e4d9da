package secrets

import (
	"context"

	"chatonline-world/backend/pkg/config"
	"chatonline-world/backend/pkg/logger"
)

// Source yields credential fields by name
type Source interface {
	Fetch(ctx context.Context) (map[string]string, error)
}

// Resolve overwrites the credentials of cfg with the fields src holds.
// Fields src lacks keep their environment value. On error cfg is untouched.
func Resolve(ctx context.Context, src Source, cfg *config.Config, log *logger.Logger) error {
	fields, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	targets := []struct {
		name  string
		field *string
	}{
		{"secret_key", &cfg.Server.SecretKey},
		{"database_url", &cfg.Database.URL},
		{"geo_token", &cfg.Geo.Token},
		{"cf_account_id", &cfg.AI.AccountID},
		{"cf_api_token", &cfg.AI.Token},
	}
	for _, t := range targets {
		if v, ok := fields[t.name]; ok {
			*t.field = v
			log.Info("Credential loaded from vault", "name", t.name)
		}
	}
	return nil
}

package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourbook/internal/config"
	"tourbook/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config, log *zap.Logger) services.IMailService {
	brand := services.MailBranding{
		AppName:    "Tourbook",
		AppBaseURL: cfg.PublicBaseURL,
	}

	if !cfg.SMTP.Enabled {
		log.Warn("SMTP disabled, emails will only be logged")
		return services.NewLogMailService(log, brand)
	}

	log.Info("SMTP mail service configured",
		zap.String("host", cfg.SMTP.Host),
		zap.Int("port", cfg.SMTP.Port),
		zap.Bool("ssl", cfg.SMTP.UseSSL))
	return services.NewSMTPMailService(cfg.SMTP, brand)
}

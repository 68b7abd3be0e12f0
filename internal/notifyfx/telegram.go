package notifyfx

import (
	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/internal/configfx"
	"github.com/ostanin/volback/pkg/notify"
)

func TelegramNotifier(config *configfx.Config, logger *logrus.Logger) *notify.Telegram {
	return notify.NewTelegram(logger, nil, config.Bot.APIBaseURL, config.Bot.Token, config.Bot.AdminChatIds)
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/ProtonMail/draftsync"
	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/logging"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
)

func main() {
	logging.SetLevelFromEnv("DRAFTSYNC_LOG_LEVEL")

	cfg, err := loadConfig(os.Getenv("DRAFTSYNC_DEMO_CONFIG"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	if cfg.ProfileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook).Stop()
	}

	conn := connector.NewDummy()
	conn.SetLatency(cfg.Latency)

	options := []draftsync.Option{
		draftsync.WithConnector(conn),
		draftsync.WithDataDir(cfg.DataDir),
		draftsync.WithEncryptionPassphrase([]byte(cfg.Passphrase)),
		draftsync.WithUploadInterval(cfg.UploadInterval),
	}

	if cfg.Compress {
		options = append(options, draftsync.WithCompression())
	}

	if cfg.DBDebug {
		options = append(options, draftsync.WithDBDebug(false))
	}

	syncer, err := draftsync.New(options...)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create syncer")
	}

	ctx := context.Background()

	defer func() {
		if err := syncer.Close(ctx); err != nil {
			logrus.WithError(err).Error("Failed to close syncer")
		}
	}()

	eventCh := syncer.AddWatcher()

	logging.GoAnnotate(ctx, func(ctx context.Context) {
		for event := range eventCh {
			logrus.Infof("Event: %T %+v", event, event)
		}
	}, map[string]any{"component": "demo-watcher"})

	if err := compose(ctx, syncer, cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to compose draft")
	}
}

func compose(ctx context.Context, syncer *draftsync.Syncer, cfg config) error {
	key, err := crypto.GenerateKey(cfg.SenderName, cfg.SenderAddress, "x25519", 0)
	if err != nil {
		return err
	}

	kr, err := crypto.NewKeyRing(key)
	if err != nil {
		return err
	}

	userID := draft.UserID(cfg.UserID)
	messageID := draft.NewLocalMessageID()
	fields := draft.Fields{
		Sender:   draft.Sender{Address: cfg.SenderAddress, Name: cfg.SenderName},
		Subject:  "Hello",
		ToList:   []draft.Recipient{{Address: cfg.RecipientAddress}},
		MIMEType: draft.MIMETypePlainText,
	}

	if err := syncer.StartContinuousUpload(ctx, userID, messageID, draft.ActionCompose); err != nil {
		return err
	}

	// Type the body word by word, as the composer would save it.
	for _, word := range []string{"Hi,", "this", "draft", "is", "synchronized", "while", "you", "type."} {
		if fields.Body != "" {
			fields.Body += " "
		}

		fields.Body += word

		if _, err := syncer.StoreDraft(ctx, userID, messageID, draft.ActionCompose, cfg.AddressID, fields, kr); err != nil {
			return err
		}

		time.Sleep(cfg.TypingDelay)
	}

	syncer.StopContinuousUpload()

	if err := syncer.ForceUpload(ctx, userID, messageID); err != nil {
		return err
	}

	state, err := syncer.GetDraftState(ctx, userID, messageID)
	if err != nil {
		return err
	}

	logrus.WithField("messageID", messageID.ShortID()).
		WithField("apiMessageID", state.APIMessageID.ShortID()).
		WithField("state", state.SyncState).
		Info("Draft saved")

	if err := syncer.MarkSending(ctx, userID, messageID); err != nil {
		return err
	}

	return syncer.ConfirmSent(ctx, userID, messageID)
}

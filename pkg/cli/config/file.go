package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// File is the optional TOML configuration file. Values apply only to
// settings that were not given as a flag or environment variable.
//
//	addr = ":3002"
//	target_repo = "acme/app"
//	branch = "main"
//	build_script = "./build-ios.sh"
//	launch_delay = "1s"
type File struct {
	Addr             string `toml:"addr"`
	WebhookSecret    string `toml:"webhook_secret" masq:"secret"`
	TriggeredMessage string `toml:"triggered_message"`

	TargetRepo string `toml:"target_repo"`
	Branch     string `toml:"branch"`

	BuildScript     string `toml:"build_script"`
	RootDir         string `toml:"root_dir"`
	LaunchDelay     string `toml:"launch_delay"`
	SerializeBuilds *bool  `toml:"serialize_builds"`

	SlackWebhookURL string `toml:"slack_webhook_url" masq:"secret"`
	SentryDSN       string `toml:"sentry_dsn" masq:"secret"`
	SentryEnv       string `toml:"sentry_env"`
}

// LoadFile reads and decodes a TOML configuration file. Unknown keys are rejected.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open config file", goerr.V("path", path))
	}
	defer f.Close()

	var file File
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, goerr.Wrap(err, "failed to decode config file", goerr.V("path", path))
	}

	return &file, nil
}

// Apply copies file values into the flag-backed configs. isSet reports
// whether a flag was given explicitly (command line or environment).
func (f *File) Apply(isSet func(name string) bool, server *Server, trigger *Trigger, build *Build, notify *Notify) error {
	setString := func(name string, dst *string, v string) {
		if v != "" && !isSet(name) {
			*dst = v
		}
	}

	setString("addr", &server.Addr, f.Addr)
	setString("webhook-secret", &server.WebhookSecret, f.WebhookSecret)
	setString("triggered-message", &server.TriggeredMessage, f.TriggeredMessage)

	setString("target-repo", &trigger.TargetRepo, f.TargetRepo)
	setString("branch", &trigger.Branch, f.Branch)

	setString("build-script", &build.Script, f.BuildScript)
	setString("root-dir", &build.RootDir, f.RootDir)
	if f.LaunchDelay != "" && !isSet("launch-delay") {
		d, err := time.ParseDuration(f.LaunchDelay)
		if err != nil {
			return goerr.Wrap(err, "invalid launch_delay in config file", goerr.V("launch_delay", f.LaunchDelay))
		}
		build.LaunchDelay = d
	}
	if f.SerializeBuilds != nil && !isSet("serialize-builds") {
		build.SerializeBuilds = *f.SerializeBuilds
	}

	setString("slack-webhook-url", &notify.SlackWebhookURL, f.SlackWebhookURL)
	setString("sentry-dsn", &notify.SentryDSN, f.SentryDSN)
	setString("sentry-env", &notify.SentryEnv, f.SentryEnv)

	return nil
}

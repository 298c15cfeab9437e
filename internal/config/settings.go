package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Settings holds every resolved runtime option.
// It is built once by Load and handed down by value; the engine never reads the environment.
type Settings struct {
	AnniversaryFeedURL string
	BirthdayFeedURL    string
	FeedUsername       string
	FeedPassword       string

	ChatAPIToken  string
	ChatAPIURL    string
	NotifyChannel string
	RosterChannel string
	BotUsername   string

	TargetOffsetDays int

	DirectoryMode      string
	DirectoryDomains   []string
	GoogleCredentials  string
	DirectorySubject   string
	DirectoryVCardPath string
	DirectoryVCardURL  string

	NoticeLanguage  string
	IncludeDuration bool
	StrictSummaries bool

	RunSchedule string
	ServerPort  string
}

// SettingsError reports a missing or invalid configuration value.
type SettingsError struct {
	Key     string
	Message string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Message)
}

// Load resolves Settings from, in increasing priority: defaults, the optional
// configuration file at path, a .env file in the working directory, and the process environment.
// The chat token falls back to the OS keyring when absent from all of them.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(EnvFileName); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ErrEnvFile, err)
		}
		slog.Debug(MsgEnvFileMissing, LogKeyComponent, CompConfig)
	}

	v := viper.New()
	v.SetDefault(KeyTargetOffsetDays, DefaultOffsetDays)
	v.SetDefault(KeyDirectoryMode, DefaultDirectoryMode)
	v.SetDefault(KeyNoticeLanguage, DefaultLanguage)
	v.SetDefault(KeyBotUsername, DefaultBotUsername)
	v.SetDefault(KeyRunSchedule, DefaultRunSchedule)
	v.SetDefault(KeyServerPort, DefaultPort)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConfigFile, err)
		}
	}
	v.AutomaticEnv()

	s := &Settings{
		AnniversaryFeedURL: v.GetString(KeyAnniversaryFeedURL),
		BirthdayFeedURL:    v.GetString(KeyBirthdayFeedURL),
		FeedUsername:       v.GetString(KeyFeedUsername),
		FeedPassword:       v.GetString(KeyFeedPassword),
		ChatAPIToken:       v.GetString(KeyChatAPIToken),
		ChatAPIURL:         v.GetString(KeyChatAPIURL),
		NotifyChannel:      v.GetString(KeyNotifyChannel),
		RosterChannel:      v.GetString(KeyRosterChannel),
		BotUsername:        v.GetString(KeyBotUsername),
		DirectoryMode:      strings.ToLower(v.GetString(KeyDirectoryMode)),
		DirectoryDomains:   splitList(v.GetString(KeyDirectoryDomains)),
		GoogleCredentials:  v.GetString(KeyGoogleCredentials),
		DirectorySubject:   v.GetString(KeyDirectorySubject),
		DirectoryVCardPath: v.GetString(KeyDirectoryVCardPath),
		DirectoryVCardURL:  v.GetString(KeyDirectoryVCardURL),
		NoticeLanguage:     strings.ToLower(v.GetString(KeyNoticeLanguage)),
		RunSchedule:        v.GetString(KeyRunSchedule),
		ServerPort:         v.GetString(KeyServerPort),
	}

	var err error
	if s.TargetOffsetDays, err = parseOffset(v.GetString(KeyTargetOffsetDays)); err != nil {
		return nil, err
	}
	if s.IncludeDuration, err = parseBool(KeyIncludeDuration, v.GetString(KeyIncludeDuration)); err != nil {
		return nil, err
	}
	if s.StrictSummaries, err = parseBool(KeyStrictSummaries, v.GetString(KeyStrictSummaries)); err != nil {
		return nil, err
	}

	if s.ChatAPIToken == "" {
		if token, kerr := keyring.Get(KeyringService, KeyringUser); kerr == nil {
			slog.Debug(MsgKeyringFallback, LogKeyComponent, CompConfig)
			s.ChatAPIToken = token
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks required values and mode-specific requirements.
func (s *Settings) Validate() error {
	required := []struct{ key, value string }{
		{KeyAnniversaryFeedURL, s.AnniversaryFeedURL},
		{KeyBirthdayFeedURL, s.BirthdayFeedURL},
		{KeyChatAPIToken, s.ChatAPIToken},
		{KeyNotifyChannel, s.NotifyChannel},
	}
	for _, r := range required {
		if r.value == "" {
			return &SettingsError{Key: r.key, Message: ErrSettingRequired}
		}
	}

	switch s.DirectoryMode {
	case DirectoryModeGoogle:
		if len(s.DirectoryDomains) == 0 {
			return &SettingsError{Key: KeyDirectoryDomains, Message: ErrSettingRequired}
		}
		if s.GoogleCredentials == "" {
			return &SettingsError{Key: KeyGoogleCredentials, Message: ErrSettingRequired}
		}
	case DirectoryModeVCard:
		if s.DirectoryVCardPath == "" && s.DirectoryVCardURL == "" {
			return &SettingsError{Key: KeyDirectoryVCardPath, Message: ErrSettingRequired}
		}
	default:
		return &SettingsError{Key: KeyDirectoryMode, Message: ErrSettingMode}
	}

	if !slices.Contains(SupportedLanguages, s.NoticeLanguage) {
		return &SettingsError{Key: KeyNoticeLanguage, Message: ErrSettingLanguage}
	}
	return nil
}

func parseOffset(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultOffsetDays, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &SettingsError{Key: KeyTargetOffsetDays, Message: ErrSettingNumber}
	}
	return n, nil
}

func parseBool(key, raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &SettingsError{Key: key, Message: ErrSettingBool}
	}
	return b, nil
}

// splitList splits a comma separated list, dropping blanks and keeping order.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

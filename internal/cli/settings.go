package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/domain"
)

// settingFields maps a settings key to its getter and setter.
var settingFields = map[string]struct {
	get func(domain.Settings) string
	set func(*domain.Settings, string) error
}{
	"language": {
		get: func(s domain.Settings) string { return string(s.Language) },
		set: func(s *domain.Settings, v string) error { s.Language = domain.Language(v); return nil },
	},
	"theme": {
		get: func(s domain.Settings) string { return string(s.Theme) },
		set: func(s *domain.Settings, v string) error { s.Theme = domain.ThemePreference(v); return nil },
	},
	"voice": {
		get: func(s domain.Settings) string { return strconv.FormatBool(s.VoiceEnabled) },
		set: func(s *domain.Settings, v string) error { return parseBool(v, &s.VoiceEnabled) },
	},
	"notifications": {
		get: func(s domain.Settings) string { return strconv.FormatBool(s.NotificationsEnabled) },
		set: func(s *domain.Settings, v string) error { return parseBool(v, &s.NotificationsEnabled) },
	},
	"ai-model": {
		get: func(s domain.Settings) string { return s.AIModel },
		set: func(s *domain.Settings, v string) error { s.AIModel = v; return nil },
	},
	"tts-provider": {
		get: func(s domain.Settings) string { return string(s.TTSProvider) },
		set: func(s *domain.Settings, v string) error { s.TTSProvider = domain.TTSProvider(v); return nil },
	},
	"voice-id": {
		get: func(s domain.Settings) string { return s.ElevenVoiceID },
		set: func(s *domain.Settings, v string) error { s.ElevenVoiceID = v; return nil },
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseBool(v string, dst *bool) error {
	switch strings.ToLower(v) {
	case "on", "yes":
		*dst = true
		return nil
	case "off", "no":
		*dst = false
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("expected true or false, got %q", v)
	}
	*dst = b
	return nil
}

func newSettingsCmd(opts Options) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Show or change your preferences"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			current := e.stores.Settings.Current()
			for _, k := range settingKeys() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, settingFields[k].get(current))
			}
			return nil
		}),
	})

	settings.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting. Keys: " + strings.Join(settingKeys(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: runE(opts, func(cmd *cobra.Command, e *env, args []string) error {
			field, ok := settingFields[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q, expected one of %s", args[0], strings.Join(settingKeys(), ", "))
			}
			next := e.stores.Settings.Current()
			if err := field.set(&next, args[1]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := next.Validate(); err != nil {
				return err
			}
			e.stores.Settings.Update(func(s *domain.Settings) { *s = next })
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], field.get(next))
			return nil
		}),
	})

	settings.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			e.stores.Settings.Reset()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "settings restored")
			return nil
		}),
	})
	return settings
}

package config

import (
	"github.com/urfave/cli/v2"
)

const (
	FlagDB       = "db"
	FlagStore    = "store"
	FlagOutput   = "output"
	FlagTemplate = "template"
	FlagAudio    = "audio"
	FlagDebug    = "debug"
	FlagToken    = "token"
)

// Flags returns the global flags understood by every binary.
func Flags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagDB,
			Usage:   "store download records in `FILE` (default: db.sqlite3, or db.bolt for the bolt store)",
			EnvVars: []string{"DB_PATH"},
		},
		&cli.StringFlag{
			Name:    FlagStore,
			Value:   string(d.Store),
			Usage:   "record store backend: sqlite, bolt or memory",
			EnvVars: []string{"STORE"},
		},
		&cli.StringFlag{
			Name:    FlagOutput,
			Aliases: []string{"o"},
			Value:   d.OutputDir,
			Usage:   "save downloaded files to `DIR`",
			EnvVars: []string{"OUTPUT_DIR"},
		},
		&cli.StringFlag{
			Name:    FlagTemplate,
			Value:   d.Template,
			Usage:   "filename `TEMPLATE` using {title}, {id}, {author} and {ext}",
			EnvVars: []string{"FILENAME_TEMPLATE"},
		},
		&cli.BoolFlag{
			Name:    FlagAudio,
			Aliases: []string{"a"},
			Usage:   "download audio only",
			EnvVars: []string{"AUDIO_ONLY"},
		},
		&cli.BoolFlag{
			Name:    FlagDebug,
			Usage:   "enable debug logging",
			EnvVars: []string{"DEBUG"},
		},
	}
}

// BotFlags returns Flags plus the Telegram bot token flag.
func BotFlags() []cli.Flag {
	return append(Flags(), &cli.StringFlag{
		Name:    FlagToken,
		Usage:   "Telegram bot API `TOKEN`",
		EnvVars: []string{"TELEGRAM_BOT_TOKEN"},
	})
}

// FromContext reads a Config from the flags of c.
func FromContext(c *cli.Context) Config {
	return Config{
		DBPath:    c.String(FlagDB),
		Store:     StoreKind(c.String(FlagStore)),
		OutputDir: c.String(FlagOutput),
		Template:  c.String(FlagTemplate),
		AudioOnly: c.Bool(FlagAudio),
		Debug:     c.Bool(FlagDebug),
		Token:     c.String(FlagToken),
	}
}

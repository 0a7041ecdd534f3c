package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"sparkload/internal/config"
	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

var initOutput string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file interactively",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", config.FileName+".yaml", "path of the config file to write")
	rootCmd.AddCommand(initCmd)
}

type clusterAnswers struct {
	Host      string
	Account   string
	Warehouse string
	Role      string
	DBName    string `survey:"db_name"`
	DBUser    string `survey:"db_user"`
	DBPort    string `survey:"db_port"`
	Password  string
}

type sourceAnswers struct {
	ARN         string `survey:"arn"`
	Region      string
	LogData     string `survey:"log_data"`
	LogJSONPath string `survey:"log_jsonpath"`
	SongData    string `survey:"song_data"`
}

func runInit(cmd *cobra.Command, args []string) error {
	p := printer(cmd)

	if _, err := os.Stat(initOutput); err == nil {
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%s already exists. Overwrite it?", initOutput),
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return errors.Wrap(err, errors.ErrCodeUserInput, "Prompt failed")
		}
		if !overwrite {
			p.Info("init cancelled")
			return nil
		}
	}

	dialect := config.DialectRedshift
	if err := survey.AskOne(&survey.Select{
		Message: "Warehouse:",
		Options: []string{config.DialectRedshift, config.DialectSnowflake},
		Default: config.DialectRedshift,
	}, &dialect); err != nil {
		return errors.Wrap(err, errors.ErrCodeUserInput, "Prompt failed")
	}

	var cluster clusterAnswers
	if err := survey.Ask(clusterQuestions(dialect), &cluster); err != nil {
		return errors.Wrap(err, errors.ErrCodeUserInput, "Prompt failed")
	}

	var sources sourceAnswers
	if err := survey.Ask(sourceQuestions(), &sources); err != nil {
		return errors.Wrap(err, errors.ErrCodeUserInput, "Prompt failed")
	}

	cfg := &models.Config{
		Cluster: models.Cluster{
			Dialect:   dialect,
			Host:      cluster.Host,
			Account:   cluster.Account,
			Warehouse: cluster.Warehouse,
			Role:      cluster.Role,
			DBName:    cluster.DBName,
			DBUser:    cluster.DBUser,
		},
		IAMRole: models.IAMRole{ARN: sources.ARN},
		S3: models.S3{
			Region:      sources.Region,
			LogData:     sources.LogData,
			LogJSONPath: sources.LogJSONPath,
			SongData:    sources.SongData,
		},
	}
	if dialect == config.DialectRedshift {
		port, err := strconv.Atoi(cluster.DBPort)
		if err != nil {
			return errors.ConfigError(fmt.Sprintf("invalid port %q", cluster.DBPort), "cluster.db_port")
		}
		cfg.Cluster.DBPort = port
	}

	useKeyring := true
	if err := survey.AskOne(&survey.Confirm{
		Message: "Store the password in the system keyring instead of the file?",
		Default: true,
	}, &useKeyring); err != nil {
		return errors.Wrap(err, errors.ErrCodeUserInput, "Prompt failed")
	}

	if useKeyring {
		if err := config.StorePassword(cfg, cluster.Password); err != nil {
			return err
		}
	} else {
		cfg.Cluster.DBPassword = cluster.Password
	}

	if err := config.Save(initOutput, cfg); err != nil {
		return err
	}
	p.Success("configuration written to %s", initOutput)
	p.Info("run 'sparkload check' to verify it")
	return nil
}

func clusterQuestions(dialect string) []*survey.Question {
	var qs []*survey.Question
	if dialect == config.DialectSnowflake {
		qs = append(qs,
			&survey.Question{
				Name:     "account",
				Prompt:   &survey.Input{Message: "Snowflake account (e.g., xy12345.us-east-1):"},
				Validate: survey.Required,
			},
			&survey.Question{
				Name:     "warehouse",
				Prompt:   &survey.Input{Message: "Warehouse:", Default: "COMPUTE_WH"},
				Validate: survey.Required,
			},
			&survey.Question{
				Name:   "role",
				Prompt: &survey.Input{Message: "Role:", Default: "SYSADMIN"},
			},
		)
	} else {
		qs = append(qs,
			&survey.Question{
				Name:     "host",
				Prompt:   &survey.Input{Message: "Cluster endpoint:"},
				Validate: survey.Required,
			},
			&survey.Question{
				Name:     "db_port",
				Prompt:   &survey.Input{Message: "Port:", Default: "5439"},
				Validate: survey.Required,
			},
		)
	}

	return append(qs,
		&survey.Question{
			Name:     "db_name",
			Prompt:   &survey.Input{Message: "Database:", Default: "dev"},
			Validate: survey.Required,
		},
		&survey.Question{
			Name:     "db_user",
			Prompt:   &survey.Input{Message: "User:"},
			Validate: survey.Required,
		},
		&survey.Question{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		},
	)
}

func sourceQuestions() []*survey.Question {
	return []*survey.Question{
		{
			Name:     "arn",
			Prompt:   &survey.Input{Message: "IAM role ARN for bulk copy:"},
			Validate: survey.Required,
		},
		{
			Name:   "region",
			Prompt: &survey.Input{Message: "Source bucket region:", Default: "us-west-2"},
		},
		{
			Name:     "log_data",
			Prompt:   &survey.Input{Message: "Event log prefix:", Default: "s3://udacity-dend/log_data"},
			Validate: survey.Required,
		},
		{
			Name:     "log_jsonpath",
			Prompt:   &survey.Input{Message: "Event jsonpaths manifest:", Default: "s3://udacity-dend/log_json_path.json"},
			Validate: survey.Required,
		},
		{
			Name:     "song_data",
			Prompt:   &survey.Input{Message: "Song data prefix:", Default: "s3://udacity-dend/song_data"},
			Validate: survey.Required,
		},
	}
}

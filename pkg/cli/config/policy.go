package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Policy holds reconciliation policy configuration. Values given by flags
// override the policy file, which overrides the defaults.
type Policy struct {
	File         string
	Ignore       []string
	Create       []string
	HighPriority []string
	Notify       []string
	SweepTag     string
	CallTimeout  time.Duration
}

// Flags returns CLI flags for policy configuration
func (c *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Policy file (.toml, .yaml or .yml)",
			Destination: &c.File,
			Sources:     cli.EnvVars("GHTASK_POLICY_FILE"),
		},
		&cli.StringSliceFlag{
			Name:        "ignore-reason",
			Usage:       "Reasons dropped without marking them read",
			Destination: &c.Ignore,
			Sources:     cli.EnvVars("GHTASK_IGNORE_REASONS"),
		},
		&cli.StringSliceFlag{
			Name:        "create-reason",
			Usage:       "Reasons that create a task",
			Destination: &c.Create,
			Sources:     cli.EnvVars("GHTASK_CREATE_REASONS"),
		},
		&cli.StringSliceFlag{
			Name:        "high-priority-reason",
			Usage:       "Reasons whose tasks get high priority",
			Destination: &c.HighPriority,
			Sources:     cli.EnvVars("GHTASK_HIGH_PRIORITY_REASONS"),
		},
		&cli.StringSliceFlag{
			Name:        "notify-reason",
			Usage:       "Reasons that send a notification",
			Destination: &c.Notify,
			Sources:     cli.EnvVars("GHTASK_NOTIFY_REASONS"),
		},
		&cli.StringFlag{
			Name:        "sweep-tag",
			Usage:       "Tag of tasks closed once their pull request is closed or merged",
			Destination: &c.SweepTag,
			Sources:     cli.EnvVars("GHTASK_SWEEP_TAG"),
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Timeout of each external call",
			Destination: &c.CallTimeout,
			Sources:     cli.EnvVars("GHTASK_CALL_TIMEOUT"),
		},
	}
}

// policyFile is the on-disk representation. Absent keys keep their defaults.
type policyFile struct {
	Ignore       *[]string `toml:"ignore" yaml:"ignore"`
	Create       *[]string `toml:"create" yaml:"create"`
	HighPriority *[]string `toml:"high_priority" yaml:"high_priority"`
	Notify       *[]string `toml:"notify" yaml:"notify"`
	SweepTag     string    `toml:"sweep_tag" yaml:"sweep_tag"`
	CallTimeout  string    `toml:"call_timeout" yaml:"call_timeout"`
}

// Build returns a validated policy
func (c *Policy) Build() (*model.Policy, error) {
	policy := model.DefaultPolicy()

	if c.File != "" {
		pf, err := loadPolicyFile(c.File)
		if err != nil {
			return nil, err
		}
		if err := pf.apply(policy); err != nil {
			return nil, goerr.Wrap(err, "invalid policy file", goerr.V("path", c.File))
		}
	}

	overrides := []struct {
		values []string
		dst    *model.ReasonSet
	}{
		{c.Ignore, &policy.Ignore},
		{c.Create, &policy.Create},
		{c.HighPriority, &policy.HighPriority},
		{c.Notify, &policy.Notify},
	}
	for _, o := range overrides {
		if len(o.values) == 0 {
			continue
		}
		set, err := model.ParseReasonSet(o.values)
		if err != nil {
			return nil, err
		}
		*o.dst = set
	}
	if c.SweepTag != "" {
		policy.SweepTag = c.SweepTag
	}
	if c.CallTimeout != 0 {
		policy.CallTimeout = c.CallTimeout
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func loadPolicyFile(path string) (*policyFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file",
			goerr.V("path", path),
			goerr.T(model.ErrTagConfig),
		)
	}

	var pf policyFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(raw, &pf)
	case ".yaml", ".yml":
		err = yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &pf)
	default:
		return nil, goerr.New("unsupported policy file extension",
			goerr.V("path", path),
			goerr.V("ext", ext),
			goerr.T(model.ErrTagConfig),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file",
			goerr.V("path", path),
			goerr.T(model.ErrTagConfig),
		)
	}
	return &pf, nil
}

func (pf *policyFile) apply(policy *model.Policy) error {
	sets := []struct {
		values *[]string
		dst    *model.ReasonSet
	}{
		{pf.Ignore, &policy.Ignore},
		{pf.Create, &policy.Create},
		{pf.HighPriority, &policy.HighPriority},
		{pf.Notify, &policy.Notify},
	}
	for _, s := range sets {
		if s.values == nil {
			continue
		}
		set, err := model.ParseReasonSet(*s.values)
		if err != nil {
			return err
		}
		*s.dst = set
	}

	if pf.SweepTag != "" {
		policy.SweepTag = pf.SweepTag
	}
	if pf.CallTimeout != "" {
		d, err := time.ParseDuration(pf.CallTimeout)
		if err != nil {
			return goerr.Wrap(err, "invalid call_timeout",
				goerr.V("call_timeout", pf.CallTimeout),
				goerr.T(model.ErrTagConfig),
			)
		}
		policy.CallTimeout = d
	}
	return nil
}

// Package stack builds the CloudFormation template that deploys the bot: the
// execution role, the function and one EventBridge rule per trigger.
package stack

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
	"gopkg.in/yaml.v3"

	"github.com/abdulachik/sepsisx/internal/scheduler"
)

// Logical IDs of the fixed resources.
const (
	RoleLogicalID     = "TwitterBotRole"
	FunctionLogicalID = "TwitterBotFunction"
)

const (
	basicExecutionPolicyARN = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"
	runtime                 = "provided.al2023"
	handler                 = "bootstrap"
	defaultMemorySize       = 128
)

// Template is a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string              `json:"AWSTemplateFormatVersion"`
	Description              string              `json:"Description,omitempty"`
	Resources                map[string]Resource `json:"Resources"`
	Outputs                  map[string]Output   `json:"Outputs,omitempty"`
}

// Resource is a single resource in the template.
type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty"`
}

// Output is a stack output.
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
}

// PolicyDocument is an IAM policy document.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement is one statement of a PolicyDocument.
type PolicyStatement struct {
	Effect    string         `json:"Effect"`
	Principal map[string]any `json:"Principal,omitempty"`
	Action    any            `json:"Action"`
	Resource  any            `json:"Resource,omitempty"`
}

// Config describes the stack to build.
type Config struct {
	Description  string
	FunctionName string
	SecretID     string
	// SecretARN is the only resource the role may read.
	SecretARN  string
	CodeBucket string
	CodeKey    string
	Timeout    time.Duration
	MemorySize int
	Triggers   []scheduler.Trigger
}

func (c Config) validate() error {
	if c.FunctionName == "" {
		return fmt.Errorf("function name is required")
	}
	if c.SecretID == "" {
		return fmt.Errorf("secret id is required")
	}
	if c.SecretARN == "" {
		return fmt.Errorf("secret ARN is required")
	}
	if c.CodeBucket == "" || c.CodeKey == "" {
		return fmt.Errorf("code bucket and key are required")
	}
	if c.Timeout < time.Second || c.Timeout > 15*time.Minute {
		return fmt.Errorf("timeout %s out of range", c.Timeout)
	}
	if len(c.Triggers) == 0 {
		return fmt.Errorf("at least one trigger is required")
	}
	seen := make(map[string]bool, len(c.Triggers))
	for _, t := range c.Triggers {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate trigger %s", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Build constructs the template for cfg.
func Build(cfg Config) (*Template, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid stack config: %w", err)
	}

	memory := cfg.MemorySize
	if memory <= 0 {
		memory = defaultMemorySize
	}

	tmpl := &Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              cfg.Description,
		Resources: map[string]Resource{
			RoleLogicalID:     role(cfg),
			FunctionLogicalID: function(cfg, memory),
		},
		Outputs: map[string]Output{
			"FunctionArn": {
				Description: "ARN of the posting function",
				Value:       intrinsics.GetAtt{LogicalName: FunctionLogicalID, Attribute: "Arn"},
			},
			"RoleArn": {
				Description: "ARN of the execution role",
				Value:       intrinsics.GetAtt{LogicalName: RoleLogicalID, Attribute: "Arn"},
			},
		},
	}

	for _, t := range cfg.Triggers {
		payload, err := t.PayloadJSON()
		if err != nil {
			return nil, err
		}
		tmpl.Resources[t.Name] = rule(t, payload)
		tmpl.Resources[PermissionLogicalID(t)] = permission(t)
	}

	return tmpl, nil
}

// PermissionLogicalID returns the logical ID of the invoke permission for t.
func PermissionLogicalID(t scheduler.Trigger) string {
	return t.Name + "Permission"
}

func role(cfg Config) Resource {
	trust := PolicyDocument{
		Version: "2012-10-17",
		Statement: []PolicyStatement{{
			Effect:    "Allow",
			Principal: map[string]any{"Service": "lambda.amazonaws.com"},
			Action:    "sts:AssumeRole",
		}},
	}
	readSecret := PolicyDocument{
		Version: "2012-10-17",
		Statement: []PolicyStatement{{
			Effect:   "Allow",
			Action:   "secretsmanager:GetSecretValue",
			Resource: cfg.SecretARN,
		}},
	}

	return Resource{
		Type: "AWS::IAM::Role",
		Properties: map[string]any{
			"RoleName":                 intrinsics.Sub{String: "${AWS::StackName}-twitter-bot-role"},
			"AssumeRolePolicyDocument": trust,
			"ManagedPolicyArns":        []any{basicExecutionPolicyARN},
			"Policies": []any{
				map[string]any{
					"PolicyName":     "SecretsManagerAccess",
					"PolicyDocument": readSecret,
				},
			},
		},
	}
}

func function(cfg Config, memory int) Resource {
	return Resource{
		Type: "AWS::Lambda::Function",
		Properties: map[string]any{
			"FunctionName":  cfg.FunctionName,
			"Description":   "Posts the daily research digest to X",
			"Runtime":       runtime,
			"Handler":       handler,
			"Architectures": []any{"arm64"},
			"Code": map[string]any{
				"S3Bucket": cfg.CodeBucket,
				"S3Key":    cfg.CodeKey,
			},
			"Role":       intrinsics.GetAtt{LogicalName: RoleLogicalID, Attribute: "Arn"},
			"Timeout":    int(cfg.Timeout / time.Second),
			"MemorySize": memory,
			"Environment": map[string]any{
				"Variables": map[string]any{
					"SECRET_ID":  cfg.SecretID,
					"SECRET_ARN": cfg.SecretARN,
				},
			},
		},
	}
}

func rule(t scheduler.Trigger, payload string) Resource {
	return Resource{
		Type: "AWS::Events::Rule",
		Properties: map[string]any{
			"Description":        t.Description,
			"ScheduleExpression": t.CronExpression(),
			"State":              "ENABLED",
			"Targets": []any{
				map[string]any{
					"Id":    "TwitterBotTarget",
					"Arn":   intrinsics.GetAtt{LogicalName: FunctionLogicalID, Attribute: "Arn"},
					"Input": payload,
				},
			},
		},
	}
}

func permission(t scheduler.Trigger) Resource {
	return Resource{
		Type: "AWS::Lambda::Permission",
		Properties: map[string]any{
			"FunctionName": intrinsics.Ref{LogicalName: FunctionLogicalID},
			"Action":       "lambda:InvokeFunction",
			"Principal":    "events.amazonaws.com",
			"SourceArn":    intrinsics.GetAtt{LogicalName: t.Name, Attribute: "Arn"},
		},
	}
}

// LogicalIDs returns the template's resource IDs, sorted.
func (t *Template) LogicalIDs() []string {
	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToJSON renders the template as indented JSON.
func ToJSON(t *Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML renders the template as YAML. Intrinsics only know how to marshal
// to JSON, so the template goes through a generic JSON value first.
func ToYAML(t *Template) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

// Render renders the template in the named format, "json" or "yaml".
func Render(t *Template, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ToJSON(t)
	case "yaml", "yml":
		return ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

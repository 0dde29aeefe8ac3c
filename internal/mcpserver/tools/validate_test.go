package tools

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

var deploySchema = []Param{
	{Name: "path", Kind: KindString, Required: true},
	{Name: "namespace", Kind: KindString, Required: true},
	{Name: "region", Kind: KindString, Default: "nyc1"},
	{Name: "requirements", Kind: KindArray, Items: &Param{Kind: KindString}},
	{Name: "replicas", Kind: KindInteger, Default: 1},
	{Name: "ratio", Kind: KindNumber},
	{Name: "dryRun", Kind: KindBoolean, Default: false},
	{Name: "tier", Kind: KindEnum, Enum: []string{"basic", "pro"}, Default: "basic"},
	{Name: "labels", Kind: KindObject},
}

// decode mimics what arrives from the transport
func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad fixture %s: %v", raw, err)
	}
	return m
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason Reason
		wantParam  string
	}{
		{
			name:       "missing first required",
			input:      `{"namespace":"my-app"}`,
			wantReason: ReasonMissingParameter,
			wantParam:  "path",
		},
		{
			name:       "missing second required",
			input:      `{"path":"fn.py"}`,
			wantReason: ReasonMissingParameter,
			wantParam:  "namespace",
		},
		{
			name:       "null required counts as missing",
			input:      `{"path":null,"namespace":"my-app"}`,
			wantReason: ReasonMissingParameter,
			wantParam:  "path",
		},
		{
			name:       "missing wins over type mismatch",
			input:      `{"namespace":"my-app","region":5}`,
			wantReason: ReasonMissingParameter,
			wantParam:  "path",
		},
		{
			name:       "string given number",
			input:      `{"path":42,"namespace":"my-app"}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "path",
		},
		{
			name:       "integer given fraction",
			input:      `{"path":"fn.py","namespace":"my-app","replicas":1.5}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "replicas",
		},
		{
			name:       "integer given string",
			input:      `{"path":"fn.py","namespace":"my-app","replicas":"2"}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "replicas",
		},
		{
			name:       "boolean given string",
			input:      `{"path":"fn.py","namespace":"my-app","dryRun":"true"}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "dryRun",
		},
		{
			name:       "enum outside set",
			input:      `{"path":"fn.py","namespace":"my-app","tier":"enterprise"}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "tier",
		},
		{
			name:       "array given string",
			input:      `{"path":"fn.py","namespace":"my-app","requirements":"requests"}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "requirements",
		},
		{
			name:       "array element of wrong type",
			input:      `{"path":"fn.py","namespace":"my-app","requirements":["requests",3]}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "requirements[1]",
		},
		{
			name:       "object given array",
			input:      `{"path":"fn.py","namespace":"my-app","labels":[]}`,
			wantReason: ReasonTypeMismatch,
			wantParam:  "labels",
		},
		{
			name:       "undeclared parameter",
			input:      `{"path":"fn.py","namespace":"my-app","regoin":"sfo3"}`,
			wantReason: ReasonUnexpectedParameter,
			wantParam:  "regoin",
		},
		{
			name:       "undeclared parameters reported in sorted order",
			input:      `{"path":"fn.py","namespace":"my-app","zeta":1,"alpha":2}`,
			wantReason: ReasonUnexpectedParameter,
			wantParam:  "alpha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Validate(deploySchema, decode(t, tt.input))
			if err == nil {
				t.Fatalf("Expected validation error, got args %v", args)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if verr.Reason != tt.wantReason {
				t.Errorf("Expected reason %s, got %s", tt.wantReason, verr.Reason)
			}
			if verr.Param != tt.wantParam {
				t.Errorf("Expected param %q, got %q", tt.wantParam, verr.Param)
			}
		})
	}
}

func TestValidate_TypeMismatchDetails(t *testing.T) {
	_, err := Validate(deploySchema, decode(t, `{"path":true,"namespace":"my-app"}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if verr.Expected != "string" || verr.Actual != "boolean" {
		t.Errorf("Expected string/boolean, got %s/%s", verr.Expected, verr.Actual)
	}
	if verr.Error() != `parameter "path" must be string, got boolean` {
		t.Errorf("Unexpected message: %s", verr.Error())
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	args, err := Validate(deploySchema, decode(t, `{"path":"fn.py","namespace":"my-app"}`))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	want := Arguments{
		"path":      "fn.py",
		"namespace": "my-app",
		"region":    "nyc1",
		"replicas":  int64(1),
		"dryRun":    false,
		"tier":      "basic",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("Expected %v, got %v", want, args)
	}

	// Optional parameters without a default stay unset
	if args.Has("requirements") || args.Has("ratio") || args.Has("labels") {
		t.Errorf("Expected optional parameters without defaults to be absent: %v", args)
	}
}

func TestValidate_SuppliedValuesOverrideDefaults(t *testing.T) {
	input := decode(t, `{
		"path":"fn.py","namespace":"my-app","region":"sfo3",
		"requirements":["requests","numpy"],"replicas":3,"ratio":0.5,
		"dryRun":true,"tier":"pro","labels":{"team":"core"}
	}`)

	args, err := Validate(deploySchema, input)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if args.String("region") != "sfo3" {
		t.Errorf("Expected region sfo3, got %q", args.String("region"))
	}
	if got := args.Strings("requirements"); !reflect.DeepEqual(got, []string{"requests", "numpy"}) {
		t.Errorf("Expected requirements, got %v", got)
	}
	if args.Int("replicas") != 3 {
		t.Errorf("Expected replicas 3, got %d", args.Int("replicas"))
	}
	if args.Float("ratio") != 0.5 {
		t.Errorf("Expected ratio 0.5, got %v", args.Float("ratio"))
	}
	if !args.Bool("dryRun") {
		t.Error("Expected dryRun true")
	}
	if args.String("tier") != "pro" {
		t.Errorf("Expected tier pro, got %q", args.String("tier"))
	}
	if args.Object("labels")["team"] != "core" {
		t.Errorf("Expected labels.team core, got %v", args.Object("labels"))
	}
}

func TestValidate_NullOptionalUsesDefault(t *testing.T) {
	args, err := Validate(deploySchema, decode(t, `{"path":"fn.py","namespace":"my-app","region":null}`))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if args.String("region") != "nyc1" {
		t.Errorf("Expected default region, got %q", args.String("region"))
	}
}

func TestValidate_Idempotent(t *testing.T) {
	input := decode(t, `{"path":"fn.py","namespace":"my-app","requirements":["a"],"labels":{"k":"v"}}`)

	first, err := Validate(deploySchema, input)
	if err != nil {
		t.Fatalf("first Validate failed: %v", err)
	}
	second, err := Validate(deploySchema, input)
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %v and %v", first, second)
	}

	// The caller's map is left untouched
	if _, added := input["region"]; added {
		t.Error("Validate must not write defaults into the input map")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	args, err := Validate(nil, nil)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("Expected empty arguments, got %v", args)
	}

	_, err = Validate(nil, map[string]any{"extra": 1.0})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonUnexpectedParameter {
		t.Errorf("Expected UnexpectedParameter, got %v", err)
	}
}

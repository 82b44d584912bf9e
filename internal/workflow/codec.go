package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/flowc/internal/ir"
)

// envelope is the wire form shared by every step.
type envelope struct {
	ID             string          `json:"id"`
	Type           StepType        `json:"type"`
	OutputVariable string          `json:"output_variable,omitempty"`
	Config         json.RawMessage `json:"config"`
	Actions        []Step          `json:"actions,omitempty"`
}

type rawEnvelope struct {
	ID             string            `json:"id"`
	Type           StepType          `json:"type"`
	OutputVariable string            `json:"output_variable"`
	Config         json.RawMessage   `json:"config"`
	Actions        []json.RawMessage `json:"actions"`
}

type actionWire struct {
	Plugin     string          `json:"plugin,omitempty"`
	Operation  string          `json:"operation"`
	Capability Capability      `json:"capability"`
	Unresolved bool            `json:"unresolved,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Params     json.RawMessage `json:"params"`
}

type transformHeader struct {
	Operation string   `json:"operation"`
	Input     Template `json:"input,omitempty"`
}

type aiWire struct {
	Operation   string           `json:"operation"`
	Input       Template         `json:"input"`
	Prompt      Template         `json:"prompt"`
	Model       string           `json:"model"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	Contract    ResponseContract `json:"contract"`
}

type scatterGatherWire struct {
	Input          Template `json:"input"`
	ItemVariable   string   `json:"item_variable"`
	MaxIterations  int      `json:"max_iterations"`
	MaxConcurrency int      `json:"max_concurrency"`
}

// MarshalJSON writes the step envelope with a kind-tagged params object.
func (s *ActionStep) MarshalJSON() ([]byte, error) {
	var params json.RawMessage = []byte("null")
	if s.Config != nil {
		p, err := marshalTagged(s.Config, map[string]any{"kind": s.Config.Kind()})
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", s.ID, err)
		}
		params = p
	}
	return marshalEnvelope(s.ID, TypeAction, s.OutputVariable, actionWire{
		Plugin:     s.Plugin,
		Operation:  s.Op,
		Capability: s.Capability,
		Unresolved: s.Unresolved,
		Reference:  s.Reference,
		Params:     params,
	}, nil)
}

// MarshalJSON flattens the transform config next to operation and input.
func (s *TransformStep) MarshalJSON() ([]byte, error) {
	extra := map[string]any{"operation": s.Operation()}
	if s.Input != "" {
		extra["input"] = s.Input
	}
	var cfg any = struct{}{}
	if s.Config != nil {
		cfg = s.Config
	}
	config, err := marshalTagged(cfg, extra)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", s.ID, err)
	}
	return marshalEnvelope(s.ID, TypeTransform, s.OutputVariable, json.RawMessage(config), nil)
}

func (s *AIProcessingStep) MarshalJSON() ([]byte, error) {
	return marshalEnvelope(s.ID, TypeAIProcessing, s.OutputVariable, aiWire{
		Operation:   s.Op,
		Input:       s.Input,
		Prompt:      s.Prompt,
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Contract:    s.Contract,
	}, nil)
}

func (s *ScatterGatherStep) MarshalJSON() ([]byte, error) {
	actions := s.Actions
	if actions == nil {
		actions = []Step{}
	}
	return marshalEnvelope(s.ID, TypeScatterGather, s.OutputVariable, scatterGatherWire{
		Input:          s.Input,
		ItemVariable:   s.ItemVariable,
		MaxIterations:  s.MaxIterations,
		MaxConcurrency: s.MaxConcurrency,
	}, actions)
}

func marshalEnvelope(id string, t StepType, output string, config any, actions []Step) ([]byte, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("step %s config: %w", id, err)
	}
	return json.Marshal(envelope{
		ID:             id,
		Type:           t,
		OutputVariable: output,
		Config:         raw,
		Actions:        actions,
	})
}

// marshalTagged encodes v as a JSON object with the extra keys merged in.
func marshalTagged(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("config must encode as an object: %w", err)
	}
	for k, val := range extra {
		enc, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		fields[k] = enc
	}
	return json.Marshal(fields)
}

// MarshalSteps encodes a step list. A nil list encodes as [].
func MarshalSteps(steps []Step) ([]byte, error) {
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(steps)
}

// DecodeSteps reads a JSON array of steps.
func DecodeSteps(data []byte) ([]Step, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	return decodeList(raws)
}

func decodeList(raws []json.RawMessage) ([]Step, error) {
	steps := make([]Step, 0, len(raws))
	for i, raw := range raws {
		s, err := DecodeStep(raw)
		if err != nil {
			return nil, fmt.Errorf("step[%d]: %w", i, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// DecodeStep reads one step envelope.
func DecodeStep(data []byte) (Step, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeAction:
		var w actionWire
		if err := json.Unmarshal(env.Config, &w); err != nil {
			return nil, fmt.Errorf("%s: action config: %w", env.ID, err)
		}
		s := &ActionStep{
			ID:             env.ID,
			OutputVariable: env.OutputVariable,
			Plugin:         w.Plugin,
			Op:             w.Operation,
			Capability:     w.Capability,
			Unresolved:     w.Unresolved,
			Reference:      w.Reference,
		}
		if len(w.Params) > 0 && string(w.Params) != "null" {
			var tag struct {
				Kind Capability `json:"kind"`
			}
			if err := json.Unmarshal(w.Params, &tag); err != nil {
				return nil, fmt.Errorf("%s: params: %w", env.ID, err)
			}
			cfg := newPluginConfig(tag.Kind)
			if cfg == nil {
				return nil, fmt.Errorf("%s: unknown plugin config kind %q", env.ID, tag.Kind)
			}
			if err := json.Unmarshal(w.Params, cfg); err != nil {
				return nil, fmt.Errorf("%s: %s params: %w", env.ID, tag.Kind, err)
			}
			s.Config = cfg
		}
		return s, nil

	case TypeTransform:
		var h transformHeader
		if err := json.Unmarshal(env.Config, &h); err != nil {
			return nil, fmt.Errorf("%s: transform config: %w", env.ID, err)
		}
		cfg := newTransformConfig(h.Operation)
		if err := json.Unmarshal(env.Config, cfg); err != nil {
			return nil, fmt.Errorf("%s: %s config: %w", env.ID, h.Operation, err)
		}
		return &TransformStep{
			ID:             env.ID,
			OutputVariable: env.OutputVariable,
			Input:          h.Input,
			Config:         cfg,
		}, nil

	case TypeAIProcessing:
		var w aiWire
		if err := json.Unmarshal(env.Config, &w); err != nil {
			return nil, fmt.Errorf("%s: ai_processing config: %w", env.ID, err)
		}
		return &AIProcessingStep{
			ID:             env.ID,
			OutputVariable: env.OutputVariable,
			Op:             w.Operation,
			Input:          w.Input,
			Prompt:         w.Prompt,
			Model:          w.Model,
			Temperature:    w.Temperature,
			MaxTokens:      w.MaxTokens,
			Contract:       w.Contract,
		}, nil

	case TypeScatterGather:
		var w scatterGatherWire
		if err := json.Unmarshal(env.Config, &w); err != nil {
			return nil, fmt.Errorf("%s: scatter_gather config: %w", env.ID, err)
		}
		actions, err := decodeList(env.Actions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", env.ID, err)
		}
		return &ScatterGatherStep{
			ID:             env.ID,
			OutputVariable: env.OutputVariable,
			Input:          w.Input,
			ItemVariable:   w.ItemVariable,
			Actions:        actions,
			MaxIterations:  w.MaxIterations,
			MaxConcurrency: w.MaxConcurrency,
		}, nil

	default:
		return nil, fmt.Errorf("%s: unknown step type %q", env.ID, env.Type)
	}
}

// UnmarshalJSON decodes the nested then and else step lists.
func (c *BranchConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Condition ir.Condition      `json:"condition"`
		Then      []json.RawMessage `json:"then"`
		Else      []json.RawMessage `json:"else"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	then, err := decodeList(raw.Then)
	if err != nil {
		return fmt.Errorf("then: %w", err)
	}
	var els []Step
	if len(raw.Else) > 0 {
		if els, err = decodeList(raw.Else); err != nil {
			return fmt.Errorf("else: %w", err)
		}
	}
	*c = BranchConfig{Condition: raw.Condition, Then: then, Else: els}
	return nil
}

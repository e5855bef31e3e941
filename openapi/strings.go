package openapi

import (
	"sort"
	"strings"
)

// SpecificationStrings overrides document strings by key:
//
//	info.title, info.description, info.version, info.termsOfService
//	paths.<operationId>.summary, paths.<operationId>.description
//	components.schemas.<Name>.description
//	components.schemas.<Name>.properties.<property>.description
//	components.schemas.<Name>.properties.<property>.example
//
// Blank values and unknown keys are ignored.
func SpecificationStrings(values map[string]string) SpecCustomizer {
	return SpecCustomizerFunc(func(spec *OpenAPI) {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			v := values[key]
			if strings.TrimSpace(v) == "" {
				continue
			}
			applyString(spec, strings.Split(key, "."), v)
		}
	})
}

func applyString(spec *OpenAPI, key []string, v string) {
	switch {
	case len(key) == 2 && key[0] == "info":
		switch key[1] {
		case "title":
			spec.Info.Title = v
		case "description":
			spec.Info.Description = v
		case "version":
			spec.Info.Version = v
		case "termsOfService":
			spec.Info.TermsOfService = v
		}
	case len(key) == 3 && key[0] == "paths":
		for _, item := range spec.Paths {
			for _, op := range item.Operations() {
				if op.OperationID != key[1] {
					continue
				}
				switch key[2] {
				case "summary":
					op.Summary = v
				case "description":
					op.Description = v
				}
			}
		}
	case len(key) >= 4 && key[0] == "components" && key[1] == "schemas":
		if spec.Components == nil {
			return
		}
		schema := spec.Components.Schemas[key[2]]
		if schema == nil {
			return
		}
		switch {
		case len(key) == 4 && key[3] == "description":
			schema.Description = v
		case len(key) == 6 && key[3] == "properties":
			prop := schema.Properties[key[4]]
			if prop == nil {
				return
			}
			switch key[5] {
			case "description":
				prop.Description = v
			case "example":
				prop.Example = v
			}
		}
	}
}

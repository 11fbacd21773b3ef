package resource

import (
	"maps"
	"net/http"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// DefaultFormat is the _format query value sent with entity requests.
const DefaultFormat = "json"

// Descriptor describes one remote resource type.
type Descriptor struct {
	Base        string                 `json:"base" mapstructure:"base"`
	Credentials *transport.Credentials `json:"credentials,omitempty" mapstructure:"credentials"`
	Methods     map[string]string      `json:"methods" mapstructure:"methods"`
	EntityType  string                 `json:"entityType" mapstructure:"entityType"`
	Bundle      string                 `json:"bundle,omitempty" mapstructure:"bundle"`
	Options     string                 `json:"options,omitempty" mapstructure:"options"`
	Format      string                 `json:"format,omitempty" mapstructure:"format"`
}

// Validate enforces the strict construction rules used by [New]: a base URL
// and credentials are both required.
func (d Descriptor) Validate() error {
	if err := validation.Validate(d.Base, validation.Required); err != nil {
		return errors.Wrap(errors.ErrCodeMissingBase, err, "base URL is required")
	}
	if err := validation.Validate(d.Credentials, validation.NotNil); err != nil {
		return errors.Wrap(errors.ErrCodeMissingCredentials, err, "credentials are required")
	}
	return nil
}

// Key returns the registry key for this descriptor. See [Key].
func (d Descriptor) Key() string {
	return Key(d.EntityType, d.Bundle)
}

func (d Descriptor) clone() Descriptor {
	d.Credentials = d.Credentials.Clone()
	d.Methods = maps.Clone(d.Methods)
	return d
}

// Key computes a registry key: the entity type alone when bundle is empty or
// equal to it, otherwise "entityType.bundle".
func Key(entityType, bundle string) string {
	if bundle == "" || bundle == entityType {
		return entityType
	}
	return entityType + "." + bundle
}

// DefaultMethods returns the Drupal REST templates for an entity type:
// "/<type>/{<type>}" for GET/PATCH/DELETE and "/entity/<type>" for POST.
func DefaultMethods(entityType string) map[string]string {
	item := "/" + entityType + "/{" + entityType + "}"
	return map[string]string{
		http.MethodGet:    item,
		http.MethodPost:   "/entity/" + entityType,
		http.MethodPatch:  item,
		http.MethodDelete: item,
	}
}

// DefaultOptions returns the options template for an entity type,
// "/entity/types/<type>/{bundle}".
func DefaultOptions(entityType string) string {
	return "/entity/types/" + entityType + "/{bundle}"
}

var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// expand replaces the first placeholder of tmpl with value.
func expand(tmpl, value string) string {
	loc := placeholderRe.FindStringIndex(tmpl)
	if loc == nil {
		return tmpl
	}
	return tmpl[:loc[0]] + value + tmpl[loc[1]:]
}

// join concatenates base and path, then appends _format when set.
func join(base, path, format string) string {
	u := strings.TrimSuffix(base, "/") + path
	if format == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "_format=" + format
}

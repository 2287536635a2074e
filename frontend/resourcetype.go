package frontend

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/hlsc/internal/diag"
)

// lowerCaser canonicalizes a resource-declaration type token to the
// lowercase form the primitive factory expects ("ADD_16", "Add_16" and
// "add_16" all resolve to the same resource), the same normalization
// shape the textual front end needs for any case-insensitive keyword.
var lowerCaser = cases.Lower(language.English)

// parseResourceType splits a declaration type token like "add_16",
// "cmp_eq_16", or "const_8_5" into its primitive kind, width, and any
// trailing comparator-op/const-value field.
func parseResourceType(typeName, instanceName string) ResourceDecl {
	norm := lowerCaser.String(typeName)
	parts := strings.Split(norm, "_")
	diag.Require(len(parts) >= 2, "malformed resource type %q for instance %q", typeName, instanceName)

	kind := parts[0]
	rd := ResourceDecl{Kind: kind, Name: instanceName}

	switch kind {
	case "wire", "not", "register", "add", "channel":
		w, err := strconv.Atoi(parts[len(parts)-1])
		diag.Require(err == nil, "malformed width in resource type %q", typeName)
		rd.Width = w
	case "const":
		diag.Require(len(parts) == 3, "const resource type %q must be const_<width>_<value>", typeName)
		w, err1 := strconv.Atoi(parts[1])
		v, err2 := strconv.Atoi(parts[2])
		diag.Require(err1 == nil && err2 == nil, "malformed const resource type %q", typeName)
		rd.Width = w
		rd.Extra = parts[2]
		_ = v
	case "cmp":
		diag.Require(len(parts) == 3, "comparator resource type %q must be cmp_<op>_<width>", typeName)
		rd.Extra = parts[1]
		w, err := strconv.Atoi(parts[2])
		diag.Require(err == nil, "malformed width in comparator resource type %q", typeName)
		rd.Width = w
	default:
		diag.Fatalf("unknown resource kind %q in type %q", kind, typeName)
	}
	return rd
}

package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the source.
// For omitted optional attributes gohcl fills in a placeholder whose range has
// no width, so a nil check alone is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if manifest attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// exprValue evaluates a top-level attribute. ok is false when the attribute was
// omitted or explicitly set to null, which both leave the key absent.
func exprValue(ctx context.Context, expr hcl.Expression, attrName string) (cty.Value, bool, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, fmt.Errorf("invalid value for '%s': %w", attrName, diags)
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	return val, true, nil
}

func stringAttr(ctx context.Context, expr hcl.Expression, attrName string) (*string, error) {
	val, ok, err := exprValue(ctx, expr, attrName)
	if err != nil || !ok {
		return nil, err
	}
	var s string
	if err := decodeAs(val, cty.String, &s); err != nil {
		return nil, fmt.Errorf("'%s' must be a string: %w", attrName, err)
	}
	return &s, nil
}

func boolAttr(ctx context.Context, expr hcl.Expression, attrName string) (*bool, error) {
	val, ok, err := exprValue(ctx, expr, attrName)
	if err != nil || !ok {
		return nil, err
	}
	var b bool
	if err := decodeAs(val, cty.Bool, &b); err != nil {
		return nil, fmt.Errorf("'%s' must be a bool: %w", attrName, err)
	}
	return &b, nil
}

// decodeAs converts val to want (so tuples become lists, numbers in strings
// become numbers, and so on) and stores it in the Go value pointed to by dst.
func decodeAs(val cty.Value, want cty.Type, dst any) error {
	converted, err := convert.Convert(val, want)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, dst)
}

// orderedAttributes returns the attributes of body in source order.
func orderedAttributes(body hcl.Body) ([]*hcl.Attribute, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Range.Start.Byte != out[j].Range.Start.Byte {
			return out[i].Range.Start.Byte < out[j].Range.Start.Byte
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

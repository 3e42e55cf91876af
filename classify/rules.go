package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-activity-feed/extract"
	"github.com/goliatone/go-activity-feed/pkg/types"
)

// Input carries everything a rule needs to describe one record.
type Input struct {
	Record        types.RawLogRecord
	Fields        extract.Fields
	Actor         string
	ChangedFields []string
}

// Described is the result of a matched rule: the resolved subject label, the
// display quantity (may be empty), and the composed sentence.
type Described struct {
	SubjectLabel string
	Quantity     string
	Description  string
}

// DescribeFunc composes the human-readable output for a matched rule. The
// classifier is passed in so rules can reach injected collaborators such as
// the product resolver.
type DescribeFunc func(ctx context.Context, c *Classifier, in Input) Described

// Rule maps an (action, subject) pair to an activity kind and its description
// template. Empty Action or Subject matches anything.
type Rule struct {
	Action   string
	Subject  string
	Kind     types.Kind
	Describe DescribeFunc
}

func (r Rule) matches(action, subject string) bool {
	if r.Action != "" && r.Action != action {
		return false
	}
	if r.Subject != "" && r.Subject != subject {
		return false
	}
	return true
}

// Ruleset is an ordered classification table, evaluated top to bottom with
// first match winning. Unmatched combinations fall through to the generic
// rule the classifier applies.
type Ruleset []Rule

func (rs Ruleset) match(action, subject string) (Rule, bool) {
	action = strings.ToLower(strings.TrimSpace(action))
	subject = strings.ToLower(strings.TrimSpace(subject))
	for _, rule := range rs {
		if rule.matches(action, subject) {
			return rule, true
		}
	}
	return Rule{}, false
}

// DashboardRuleset is the classification table used by the dashboard view,
// including session events.
func DashboardRuleset() Ruleset {
	rules := Ruleset{
		{Action: "login", Kind: types.KindLogin, Describe: describeSession("signed in")},
		{Action: "logout", Kind: types.KindLogout, Describe: describeSession("signed out")},
	}
	return append(rules, entityRuleset()...)
}

// ReportRuleset is the classification table used by the reporting view. It
// tracks the dashboard table but omits the session rules: reports only cover
// entity changes.
func ReportRuleset() Ruleset {
	return entityRuleset()
}

func entityRuleset() Ruleset {
	return Ruleset{
		{Action: "create", Subject: "products", Kind: types.KindProductAdded, Describe: describeEntity(productLabel, "added")},
		{Action: "update", Subject: "products", Kind: types.KindProductUpdated, Describe: describeEntity(productLabel, "updated")},
		{Action: "delete", Subject: "products", Kind: types.KindProductDeleted, Describe: describeEntity(productLabel, "deleted")},
		{Action: "create", Subject: "categories", Kind: types.KindCategoryAdded, Describe: describeEntity(categoryLabel, "added")},
		{Action: "update", Subject: "categories", Kind: types.KindCategoryUpdated, Describe: describeEntity(categoryLabel, "updated")},
		{Action: "delete", Subject: "categories", Kind: types.KindCategoryDeleted, Describe: describeEntity(categoryLabel, "deleted")},
		{Subject: "stock_movements", Kind: types.KindStockMovement, Describe: describeStockMovement},
		{Subject: "returns", Kind: types.KindReturn, Describe: describeReturn},
	}
}

func describeSession(verb string) DescribeFunc {
	return func(_ context.Context, _ *Classifier, in Input) Described {
		return Described{
			SubjectLabel: in.Actor,
			Description:  fmt.Sprintf("%s %s", in.Actor, verb),
		}
	}
}

func productLabel(in Input) string {
	if name, ok := in.Fields.ProductName(); ok {
		return name
	}
	if label := strings.TrimSpace(in.Record.EntityLabel); label != "" {
		return label
	}
	return "A product"
}

func categoryLabel(in Input) string {
	if name, ok := in.Fields.CategoryName(); ok {
		return name
	}
	if label := strings.TrimSpace(in.Record.EntityLabel); label != "" {
		return label
	}
	return "A category"
}

func describeEntity(label func(Input) string, verb string) DescribeFunc {
	return func(_ context.Context, _ *Classifier, in Input) Described {
		name := label(in)
		sentence := fmt.Sprintf("%s was %s by %s", name, verb, in.Actor)
		if len(in.ChangedFields) > 0 {
			sentence = fmt.Sprintf("%s (%s)", sentence, strings.Join(in.ChangedFields, ", "))
		}
		return Described{
			SubjectLabel: name,
			Description:  sentence,
		}
	}
}

func describeStockMovement(ctx context.Context, c *Classifier, in Input) Described {
	product := stockProductLabel(ctx, c, in)
	quantity, hasQuantity := in.Fields.Quantity()
	direction, hasDirection := in.Fields.MovementType()

	if product == "" || !hasQuantity || !hasDirection {
		label := product
		if label == "" {
			label = strings.TrimSpace(in.Record.EntityLabel)
		}
		return Described{
			SubjectLabel: label,
			Quantity:     quantity,
			Description:  genericPhrase(in.Record.Action, in.Actor),
		}
	}

	var sentence string
	switch strings.ToLower(direction) {
	case "in":
		sentence = fmt.Sprintf("%s received %s of %s", in.Actor, unitsPhrase(quantity), product)
	case "out":
		sentence = fmt.Sprintf("%s issued %s of %s", in.Actor, unitsPhrase(quantity), product)
	default:
		sentence = fmt.Sprintf("%s recorded a stock movement of %s of %s", in.Actor, unitsPhrase(quantity), product)
	}
	return Described{
		SubjectLabel: product,
		Quantity:     quantity,
		Description:  sentence,
	}
}

func describeReturn(_ context.Context, _ *Classifier, in Input) Described {
	product, hasProduct := in.Fields.ProductName()
	quantity, hasQuantity := in.Fields.Quantity()
	category, hasCategory := in.Fields.ReturnType()

	if hasProduct && hasQuantity && hasCategory {
		var sentence string
		switch strings.ToLower(category) {
		case "customer":
			sentence = fmt.Sprintf("%s processed a customer return of %s of %s", in.Actor, unitsPhrase(quantity), product)
		case "supplier":
			sentence = fmt.Sprintf("%s returned %s of %s to the supplier", in.Actor, unitsPhrase(quantity), product)
		default:
			sentence = fmt.Sprintf("%s processed a %s return of %s of %s", in.Actor, category, unitsPhrase(quantity), product)
		}
		return Described{
			SubjectLabel: product,
			Quantity:     quantity,
			Description:  sentence,
		}
	}

	label := product
	if label == "" {
		label = strings.TrimSpace(in.Record.EntityLabel)
	}
	if message, ok := in.Fields.Message(); ok {
		return Described{
			SubjectLabel: label,
			Quantity:     quantity,
			Description:  message,
		}
	}
	return Described{
		SubjectLabel: label,
		Quantity:     quantity,
		Description:  genericPhrase(in.Record.Action, in.Actor),
	}
}

func stockProductLabel(ctx context.Context, c *Classifier, in Input) string {
	if name, ok := in.Fields.ProductName(); ok {
		return name
	}
	if id, ok := in.Fields.ProductID(); ok && c != nil && c.products != nil {
		if name, found := c.products.ProductName(ctx, id); found {
			return name
		}
	}
	return ""
}

// unitsPhrase keeps sentences readable when the quantity is absent or
// non-numeric: quantities are display values, never validated.
func unitsPhrase(quantity string) string {
	if strings.TrimSpace(quantity) == "" {
		return "units"
	}
	return fmt.Sprintf("%s units", quantity)
}

func genericPhrase(action, actor string) string {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Sprintf("Action performed by %s", actor)
	}
	return fmt.Sprintf("%s performed by %s", action, actor)
}

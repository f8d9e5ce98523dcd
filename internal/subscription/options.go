package subscription

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

// OptionPlan is the set of changes that turns the stored options into the
// submitted ones.
type OptionPlan struct {
	Create []Option
	Update []Option
	Remove []int
}

// PlanOptions matches incoming options to existing ones by id. An id that
// does not belong to the subscription, or appears twice, is rejected.
func PlanOptions(subscriptionID int, existing []Option, incoming []OptionInput) (OptionPlan, error) {
	byID := lo.KeyBy(existing, func(o Option) int { return o.ID })
	plan := OptionPlan{}
	kept := make([]int, 0, len(incoming))

	for i, in := range incoming {
		if in.ID == nil {
			plan.Create = append(plan.Create, Option{SubscriptionID: subscriptionID, NameAr: in.NameAr, NameEn: in.NameEn})
			continue
		}
		current, ok := byID[*in.ID]
		if !ok || lo.Contains(kept, *in.ID) {
			return OptionPlan{}, apperror.Validation("Option does not belong to this subscription",
				[]validation.FieldError{{Field: optionField(i), Rule: "owned"}})
		}
		kept = append(kept, *in.ID)
		current.NameAr, current.NameEn = in.NameAr, in.NameEn
		plan.Update = append(plan.Update, current)
	}

	existingIDs := lo.Map(existing, func(o Option, _ int) int { return o.ID })
	plan.Remove, _ = lo.Difference(existingIDs, kept)
	return plan, nil
}

func optionField(i int) string {
	return "options[" + strconv.Itoa(i) + "].id"
}

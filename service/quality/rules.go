/*
 * @module service/quality/rules
 * @description 内置验证规则实现，覆盖完整性、值域、唯一性、参照完整性、时序和范围六类检查
 * @architecture 策略模式 - 每条规则为独立的纯谓词对象
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 规则注册 -> 逐记录评估 -> 返回是否违规
 * @rules 规则为record+context的纯函数，不修改任何状态；上下文缺失视为评估缺口，按违规处理而非报错
 * @dependencies dataquality-service/service/models
 * @refs catalog.go, context.go
 */

package quality

import (
	"log/slog"
	"strings"

	"dataquality-service/service/models"

	"github.com/spf13/cast"
)

// Rule 验证规则接口
// Evaluate返回true表示记录违反该规则
type Rule interface {
	Name() string
	Kind() models.RuleKind
	Evaluate(r *models.Record, ctx *Context) bool
}

// completenessRule 完整性规则：字段缺失、为nil或为空白字符串视为违规
type completenessRule struct {
	name  string
	field string
}

func (c *completenessRule) Name() string          { return c.name }
func (c *completenessRule) Kind() models.RuleKind { return models.RuleKindCompleteness }

func (c *completenessRule) Evaluate(r *models.Record, ctx *Context) bool {
	if !r.HasField(c.field) {
		return true
	}
	return strings.TrimSpace(r.StringField(c.field)) == ""
}

// domainRule 值域规则：取值不在许可集合内视为违规，字段缺失同样违规
type domainRule struct {
	name    string
	field   string
	allowed map[string]bool
}

func (d *domainRule) Name() string          { return d.name }
func (d *domainRule) Kind() models.RuleKind { return models.RuleKindDomain }

func (d *domainRule) Evaluate(r *models.Record, ctx *Context) bool {
	value := strings.TrimSpace(r.StringField(d.field))
	if value == "" {
		return true
	}
	return !d.allowed[strings.ToUpper(value)]
}

// uniquenessRule 唯一性规则：主键在当前批次内重复视为违规
// 主键缺失不在此标记，由对应的完整性规则负责
type uniquenessRule struct {
	name   string
	entity models.EntityType
}

func (u *uniquenessRule) Name() string          { return u.name }
func (u *uniquenessRule) Kind() models.RuleKind { return models.RuleKindUniqueness }

func (u *uniquenessRule) Evaluate(r *models.Record, ctx *Context) bool {
	key := r.Key(u.entity)
	if key == "" {
		return false
	}
	return ctx.DuplicateKeys[key]
}

// referentialRule 参照完整性规则：外键取值不在被参照实体金表主键集合内视为违规
// 被参照实体的主键集合未提供时属于评估缺口，按违规处理并记录告警
type referentialRule struct {
	name      string
	field     string
	refEntity models.EntityType
}

func (f *referentialRule) Name() string          { return f.name }
func (f *referentialRule) Kind() models.RuleKind { return models.RuleKindReferential }

func (f *referentialRule) Evaluate(r *models.Record, ctx *Context) bool {
	keys, ok := ctx.KeySet(f.refEntity)
	if !ok {
		slog.Warn("参照完整性规则缺少上下文主键集合，按违规处理",
			"rule", f.name, "ref_entity", f.refEntity)
		return true
	}
	value := strings.TrimSpace(r.StringField(f.field))
	if value == "" {
		return true
	}
	return !keys[value]
}

// rangeRule 范围规则：数值缺失、不可解析或低于下界视为违规
// allowEqual为false时等于下界同样违规
type rangeRule struct {
	name       string
	field      string
	min        float64
	allowEqual bool
}

func (g *rangeRule) Name() string          { return g.name }
func (g *rangeRule) Kind() models.RuleKind { return models.RuleKindRange }

func (g *rangeRule) Evaluate(r *models.Record, ctx *Context) bool {
	v, ok := r.FloatField(g.field)
	if !ok {
		return true
	}
	if v < g.min {
		return true
	}
	return !g.allowEqual && v == g.min
}

// orderBeforeSignupRule 时序规则：下单时间早于客户注册日期视为违规
// 客户注册日期来自上下文字段索引，查询不到属于评估缺口，按违规处理
type orderBeforeSignupRule struct {
	name string
}

func (o *orderBeforeSignupRule) Name() string          { return o.name }
func (o *orderBeforeSignupRule) Kind() models.RuleKind { return models.RuleKindTemporal }

func (o *orderBeforeSignupRule) Evaluate(r *models.Record, ctx *Context) bool {
	orderTime, ok := r.TimeField("order_datetime")
	if !ok {
		return true
	}
	customerID := strings.TrimSpace(r.StringField("customer_id"))
	if customerID == "" {
		return true
	}
	raw, ok := ctx.LookupField(models.EntityCustomer, customerID, "signup_date")
	if !ok {
		slog.Warn("时序规则查询不到客户注册日期，按违规处理",
			"rule", o.name, "customer_id", customerID)
		return true
	}
	signup, err := cast.ToTimeE(raw)
	if err != nil {
		return true
	}
	return orderTime.Before(signup)
}

// deliverySequenceRule 时序规则：配送日期早于发货日期，或发货日期早于下单日期，视为违规
type deliverySequenceRule struct {
	name string
}

func (d *deliverySequenceRule) Name() string          { return d.name }
func (d *deliverySequenceRule) Kind() models.RuleKind { return models.RuleKindTemporal }

func (d *deliverySequenceRule) Evaluate(r *models.Record, ctx *Context) bool {
	orderDate, ok1 := r.TimeField("order_date")
	shipDate, ok2 := r.TimeField("ship_date")
	deliveryDate, ok3 := r.TimeField("delivery_date")
	if !ok1 || !ok2 || !ok3 {
		return true
	}
	return deliveryDate.Before(shipDate) || shipDate.Before(orderDate)
}

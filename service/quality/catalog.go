/*
 * @module service/quality/catalog
 * @description 验证规则目录，按实体类型注册固定规则集，并支持追加注册新规则
 * @architecture 注册表模式 - 规则按实体分组的有序列表
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 目录构建 -> 内置规则注册 -> 分类器按实体查询
 * @rules 规则顺序仅决定标记列顺序，综合has_issue为逻辑或，与顺序无关；新增规则无需修改分类器
 * @dependencies dataquality-service/service/models
 * @refs rules.go, classifier.go
 */

package quality

import (
	"dataquality-service/service/models"
)

// customerStateWhitelist 客户所在州的许可值
var customerStateWhitelist = map[string]bool{
	"CA": true, "NY": true, "TX": true, "FL": true, "IL": true, "WA": true,
	"MA": true, "GA": true, "NC": true, "PA": true, "IN": true,
}

// Catalog 规则目录
type Catalog struct {
	rules map[models.EntityType][]Rule
}

// NewCatalog 创建规则目录并注册内置规则
func NewCatalog() *Catalog {
	c := &Catalog{rules: make(map[models.EntityType][]Rule)}
	c.registerBuiltinRules()
	return c
}

// Register 追加注册规则，扩展点：新实体或新规则只需在此注册
func (c *Catalog) Register(entity models.EntityType, rule Rule) {
	c.rules[entity] = append(c.rules[entity], rule)
}

// RulesFor 返回实体的有序规则列表
func (c *Catalog) RulesFor(entity models.EntityType) []Rule {
	return c.rules[entity]
}

// FlagKinds 返回实体的标记名到规则类别的映射，供评分聚合和审计导出按类别分组
func (c *Catalog) FlagKinds(entity models.EntityType) map[string]models.RuleKind {
	kinds := make(map[string]models.RuleKind, len(c.rules[entity]))
	for _, rule := range c.rules[entity] {
		kinds[rule.Name()] = rule.Kind()
	}
	return kinds
}

// registerBuiltinRules 注册固定规则集
// 每个实体都带有主键完整性和主键唯一性检查，其余规则按实体追加
func (c *Catalog) registerBuiltinRules() {
	for _, entity := range models.AllEntityTypes {
		keyField := models.KeyField(entity)
		c.Register(entity, &completenessRule{name: "missing_" + keyField, field: keyField})
		c.Register(entity, &uniquenessRule{name: "dup_" + keyField, entity: entity})
	}

	// 客户：邮箱完整性、所在州值域
	c.Register(models.EntityCustomer, &completenessRule{name: "missing_email", field: "email"})
	c.Register(models.EntityCustomer, &domainRule{
		name: "invalid_state", field: "state", allowed: customerStateWhitelist,
	})

	// 订单：客户外键、下单时间不得早于注册日期
	c.Register(models.EntityOrder, &referentialRule{
		name: "fk_customer_orphan", field: "customer_id", refEntity: models.EntityCustomer,
	})
	c.Register(models.EntityOrder, &orderBeforeSignupRule{name: "order_before_signup"})

	// 订单明细：数量、单价范围，商品外键
	c.Register(models.EntityOrderItem, &rangeRule{
		name: "bad_quantity", field: "quantity", min: 1, allowEqual: true,
	})
	c.Register(models.EntityOrderItem, &rangeRule{
		name: "bad_unit_price", field: "unit_price", min: 0, allowEqual: false,
	})
	c.Register(models.EntityOrderItem, &referentialRule{
		name: "fk_product_orphan", field: "product_id", refEntity: models.EntityProduct,
	})

	// 支付：金额不得为负
	c.Register(models.EntityPayment, &rangeRule{
		name: "negative_amount", field: "amount", min: 0, allowEqual: true,
	})

	// 配送：日期顺序 order_date <= ship_date <= delivery_date
	c.Register(models.EntityDelivery, &deliverySequenceRule{name: "delivery_sequence_violation"})
}

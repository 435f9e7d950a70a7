package categorizer

import "fjacquet/spending-coach/internal/models"

// DefaultRules returns the built-in rule table. Order is priority: a description
// mentioning both coffee and a taxi is dining.
func DefaultRules() []models.CategoryRule {
	return []models.CategoryRule{
		{
			Category: models.CategoryDining,
			Keywords: []string{"咖啡", "餐饮", "餐厅", "外卖", "coffee", "restaurant", "takeout", "cafe"},
		},
		{
			Category: models.CategoryTransportation,
			Keywords: []string{"交通", "打车", "地铁", "公交", "taxi", "metro", "subway", "bus", "uber"},
		},
		{
			Category: models.CategoryShopping,
			Keywords: []string{"购物", "电商", "服饰", "超市", "supermarket", "grocery", "amazon", "clothing"},
		},
		{
			Category: models.CategoryEntertainment,
			Keywords: []string{"娱乐", "电影", "游戏", "cinema", "movie", "game", "netflix"},
		},
		{
			Category: models.CategoryIncome,
			Keywords: []string{"工资", "收入", "salary", "payroll"},
		},
	}
}

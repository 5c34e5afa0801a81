package config

import "github.com/artpar/querybench/internal/core"

func creditCard(number string) map[string]any {
	return map[string]any{
		"credit_card": map[string]any{
			"name":             "John Doe",
			"number":           number,
			"expiration_year":  float64(2024),
			"cvv":              "123",
			"expiration_month": float64(9),
		},
	}
}

// DefaultRoutes returns the route table for the shop API: the product
// list, order creation and order lookup and update.
func DefaultRoutes() []core.RouteConfig {
	return []core.RouteConfig{
		{
			DisplayName:    "/",
			RouteName:      "/",
			AllowedMethods: []core.Method{core.MethodGET},
		},
		{
			DisplayName:    "/Order",
			RouteName:      "/order",
			AllowedMethods: []core.Method{core.MethodPOST},
			DefaultPayloads: []any{
				map[string]any{"products": []any{
					map[string]any{"id": float64(1), "quantity": float64(2)},
					map[string]any{"id": float64(2), "quantity": float64(1)},
				}},
			},
		},
		{
			DisplayName:        "/Order/",
			RouteName:          "/order/",
			AllowedMethods:     []core.Method{core.MethodGET, core.MethodPUT},
			RequiresResourceID: true,
			PresetLabels: []string{
				"Shipping Info",
				"Valid Billing Info",
				"Declined Billing Info",
				"Incorrect Billing Info",
			},
			DefaultPayloads: []any{
				map[string]any{"order": map[string]any{
					"email": "jgnault@uqac.ca",
					"shipping_information": map[string]any{
						"country":     "Canada",
						"address":     "201, rue Président-Kennedy",
						"postal_code": "G7X 3Y7",
						"city":        "Chicoutimi",
						"province":    "QC",
					},
				}},
				creditCard("4242 4242 4242 4242"),
				creditCard("4000 0000 0000 0002"),
				creditCard("1111 2222 3333 4444"),
			},
		},
	}
}

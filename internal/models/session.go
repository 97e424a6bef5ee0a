package models

// TableSession represents the resolved {restaurant, table} context that
// scopes an ordering flow. It is produced once by the resolver and
// immutable for the lifetime of the flow.
type TableSession struct {
	RestaurantID   string `json:"restaurantId"`
	TableNumber    int    `json:"tableNumber"`
	RestaurantName string `json:"restaurantName"`
}

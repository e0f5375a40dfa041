package models

// AdminLoginRequest carries the console credentials
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PartnerLoginRequest carries an affiliate's referral code, which doubles as
// the partner portal credential
type PartnerLoginRequest struct {
	RefCode string `json:"refCode" validate:"required"`
}

// LoginResponse returns the issued token
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

// DashboardStats aggregates the admin dashboard headline numbers
type DashboardStats struct {
	TotalAffiliates   int64   `json:"totalAffiliates"`
	TotalOrders       int64   `json:"totalOrders"`
	PendingOrders     int64   `json:"pendingOrders"`
	TotalSales        float64 `json:"totalSales"`
	TotalCommission   float64 `json:"totalCommission"`
	PendingCommission float64 `json:"pendingCommission"`
}

// PartnerLinks are the promotion URLs shown in the partner portal
type PartnerLinks struct {
	ShortURL  string `json:"shortUrl"`
	DirectURL string `json:"directUrl"`
}

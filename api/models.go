package api

import (
	"net/url"
	"strconv"
	"strings"
)

// MessageResponse is the {success, message} envelope returned by mutations.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pagination is the page block returned by user and post listings.
type Pagination struct {
	ItemsPerPage int `json:"itemsPerPage"`
	CurrentPage  int `json:"currentPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

// ListParams are the common paging and search parameters.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Values encodes the params the way the API expects: page and limit always
// present, search only when non-empty.
func (p ListParams) Values() url.Values {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

/*
====================================
AUTH
====================================
*/

// Role is the account role sent at sign-in.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleStore Role = "store"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type SignInResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	} `json:"data"`
}

type ChangePasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	OTP   string `json:"otp"`
}

type VerifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest updates the signed-in admin profile. Picture, when set,
// is uploaded as the "profilePicture" part.
type UpdateProfileRequest struct {
	Fields  map[string]string
	Picture *File
}

/*
====================================
USERS
====================================
*/

// User is one row of the user listings.
type User struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture"`
	UID            string `json:"uid"`
	Venmo          string `json:"venmo"`
	CashApp        string `json:"cashApp"`
	IsBlocked      bool   `json:"isBlocked"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type UserList struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Data       []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// UserRef is the compact user embedded in tips, reviews and posts.
type UserRef struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	UID            string `json:"uid,omitempty"`
	Venmo          string `json:"venmo,omitempty"`
	CashApp        string `json:"cashApp,omitempty"`
}

type Tip struct {
	ID          string  `json:"_id"`
	SentBy      UserRef `json:"sentBy"`
	User        UserRef `json:"user"`
	Amount      float64 `json:"amount"`
	AppFee      float64 `json:"appFee"`
	StripeFee   float64 `json:"stripeFee"`
	Method      string  `json:"method"`
	Type        string  `json:"type"`
	Receipt     string  `json:"receipt,omitempty"`
	IsAnonymous bool    `json:"isAnonymous"`
	IsCompleted bool    `json:"isCompleted"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type Review struct {
	ID          string  `json:"_id"`
	Reviewer    UserRef `json:"reviewer"`
	User        UserRef `json:"user"`
	Stars       float64 `json:"stars"`
	Description string  `json:"description"`
	IsAnonymous bool    `json:"isAnonymous"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UserDetail is the full profile shown on the user page.
type UserDetail struct {
	ID                  string     `json:"_id"`
	Name                string     `json:"name"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	Bio                 string     `json:"bio"`
	ProfilePicture      string     `json:"profilePicture"`
	Documents           []Document `json:"documents"`
	Occupation          string     `json:"occupation"`
	BusinessName        string     `json:"businessName"`
	JobDescription      string     `json:"jobDescription"`
	Branch              string     `json:"branch"`
	City                string     `json:"city"`
	State               string     `json:"state"`
	UID                 string     `json:"uid"`
	Venmo               string     `json:"venmo"`
	CashApp             string     `json:"cashApp"`
	TipsSent            float64    `json:"tipsSent"`
	TotalEarnings       *float64   `json:"totalEarnings"`
	TipsReceived        float64    `json:"tipsReceived"`
	ReviewsGiven        int        `json:"reviewsGiven"`
	ReviewsReceived     int        `json:"reviewsReceived"`
	Rating              float64    `json:"rating"`
	IsOwn               bool       `json:"isOwn"`
	MyEarnings          []Tip      `json:"myEarnings,omitempty"`
	MyContributions     []Tip      `json:"myContributions,omitempty"`
	FeedbackReceived    []Review   `json:"feedBackReceived,omitempty"`
	FeedbackGiven       []Review   `json:"feedBackGiven,omitempty"`
	StripeProfileStatus string     `json:"stripeProfileStatus"`
	IsEmailVerified     bool       `json:"isEmailVerified"`
	IsPhoneVerified     bool       `json:"isPhoneVerified"`
	IsSignUpCompleted   bool       `json:"isSignUpCompleted"`
	IsProfileCompleted  bool       `json:"isProfileCompleted"`
	IsBlocked           bool       `json:"isBlocked"`
	CreatedAt           string     `json:"createdAt"`
	UpdatedAt           string     `json:"updatedAt"`
}

// BlockRequest blocks (Block=true) or unblocks the user with id Blocked.
type BlockRequest struct {
	Blocked string `json:"blocked"`
	Block   bool   `json:"block"`
}

/*
====================================
POSTS
====================================
*/

// PostType selects donation campaigns or anonymous posts.
type PostType string

const (
	PostTypeDonation  PostType = "donation"
	PostTypeAnonymous PostType = "post"
)

// Valid reports whether t is a type the API accepts.
func (t PostType) Valid() bool {
	return t == PostTypeDonation || t == PostTypeAnonymous
}

// Post covers both post types. Donation-only fields are zero for anonymous
// posts, whose User is always nil.
type Post struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description"`
	Tagline      string   `json:"tagline,omitempty"`
	Amount       float64  `json:"amount,omitempty"`
	AmountRaised float64  `json:"amountRaised,omitempty"`
	User         *UserRef `json:"user"`
	Media        []string `json:"media"`
	Likes        int      `json:"likes"`
	Comments     int      `json:"comments"`
	EndDate      string   `json:"endDate,omitempty"`
	IsOwn        bool     `json:"isOwn"`
	IsLiked      bool     `json:"isLiked"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// Progress returns AmountRaised/Amount clamped to [0,1]; zero for a post with
// no goal.
func (p Post) Progress() float64 {
	if p.Amount <= 0 {
		return 0
	}
	r := p.AmountRaised / p.Amount
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}

type PostList struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

/*
====================================
NOTIFICATIONS
====================================
*/

type Notification struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	MetaData    map[string]any `json:"metaData"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

// NotificationPagination uses a different shape from [Pagination].
type NotificationPagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type NotificationList struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       []Notification         `json:"data"`
	Pagination NotificationPagination `json:"pagination"`
}

// NotificationParams pages the notification feed. Filter defaults to "all".
type NotificationParams struct {
	Page   int
	Limit  int
	Filter string
}

func (p NotificationParams) Values() url.Values {
	v := ListParams{Page: p.Page, Limit: p.Limit}.Values()
	filter := strings.TrimSpace(p.Filter)
	if filter == "" {
		filter = "all"
	}
	v.Set("filter", filter)
	return v
}

type CreateNotificationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

/*
====================================
ADMIN / ANALYTICS
====================================
*/

type DashboardStats struct {
	TotalUsers         int     `json:"totalUsers"`
	TotalPosts         int     `json:"totalPosts"`
	TotalDonations     float64 `json:"totalDonations"`
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalAppCommission float64 `json:"totalAppCommission"`
	ActiveUsers        int     `json:"activeUsers"`
	InactiveUsers      int     `json:"inactiveUsers"`
}

type DashboardStatsResponse struct {
	Status string         `json:"status"`
	Data   DashboardStats `json:"data"`
}

// MonthlyPoint is one month of the dashboard graph.
type MonthlyPoint struct {
	Users     float64 `json:"users"`
	Posts     float64 `json:"posts"`
	Revenue   float64 `json:"revenue"`
	Donations float64 `json:"donations"`
	Reports   float64 `json:"reports"`
}

// Months are the lower-case month keys used by the graph endpoints, in
// calendar order.
var Months = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// DashboardGraph is a year of monthly totals keyed by lower-case month name.
type DashboardGraph struct {
	Year    int                     `json:"year,omitempty"`
	Monthly map[string]MonthlyPoint `json:"monthly"`
}

// Series returns the twelve months in calendar order; missing months are zero.
func (g DashboardGraph) Series() [12]MonthlyPoint {
	var out [12]MonthlyPoint
	for i, m := range Months {
		out[i] = g.Monthly[m]
	}
	return out
}

// YearComparison holds two graphs for side-by-side charts.
type YearComparison struct {
	Year1 DashboardGraph `json:"year1"`
	Year2 DashboardGraph `json:"year2"`
}

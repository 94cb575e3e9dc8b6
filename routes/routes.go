// Package routes binds handlers to paths. Each Add*Routes function owns
// one feature area so main stays a wiring list.
package routes

import (
	"net/http"

	"homevia/admin"
	"homevia/auth"
	"homevia/bookings"
	"homevia/chatsession"
	"homevia/chatws"
	"homevia/livefeed"
	"homevia/meetings"
	"homevia/middleware"
	"homevia/models"
	"homevia/profile"
	"homevia/properties"
	"homevia/ratelim"
	"homevia/reviews"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir("static/uploads"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/refresh", ratelim.RateLimit(auth.RefreshToken))
	router.POST("/api/auth/logout", auth.Logout)
}

func AddMeetingRoutes(router *httprouter.Router, h *meetings.Handlers) {
	router.POST("/api/meetings", middleware.RequireRoles(h.Create, models.RoleCustomer))
	router.GET("/api/meetings/mine", middleware.Authenticate(h.ListMine))
	router.GET("/api/meetings/selling", middleware.RequireRoles(h.ListForSeller, models.RoleSeller, models.RoleAdmin))
	router.GET("/api/meetings/:meetingid", middleware.Authenticate(h.Get))
	router.PUT("/api/meetings/:meetingid/status", middleware.RequireRoles(h.SetStatus, models.RoleSeller, models.RoleAdmin))
	router.PUT("/api/meetings/:meetingid/propose", middleware.RequireRoles(h.ProposeChange, models.RoleSeller, models.RoleAdmin))
	router.PUT("/api/meetings/:meetingid/confirm", middleware.RequireRoles(h.ConfirmProposedChange, models.RoleCustomer))
	router.PUT("/api/meetings/:meetingid/close", middleware.Authenticate(h.Close))
	router.GET("/api/meetings/:meetingid/pass", middleware.Authenticate(h.PrintPass))
	router.POST("/api/meetings/pass/verify", middleware.RequireRoles(h.VerifyPass, models.RoleSeller, models.RoleAdmin))
}

func AddChatRoutes(router *httprouter.Router, h *chatsession.Handlers, hub *chatws.Hub, gate chatws.Gate) {
	router.GET("/api/chat/meeting/:meetingid", middleware.Authenticate(h.Active))
	router.DELETE("/api/chat/room/:roomToken", middleware.Authenticate(h.Destroy))
	router.GET("/ws/chat/:roomToken", chatws.WebSocketHandler(hub, gate))
}

func AddBookingRoutes(router *httprouter.Router, h *bookings.Handlers) {
	router.POST("/api/bookings", middleware.RequireRoles(h.Create, models.RoleCustomer))
	router.GET("/api/bookings/mine", middleware.Authenticate(h.ListMine))
	router.GET("/api/bookings/property/:propertyid", middleware.RequireRoles(h.ListForProperty, models.RoleSeller, models.RoleAdmin))
	router.GET("/api/bookings/:bookingid", middleware.Authenticate(h.Get))
	router.GET("/api/bookings/:bookingid/receipt", middleware.Authenticate(h.Receipt))
	router.PUT("/api/bookings/:bookingid/status", middleware.RequireRoles(h.SetStatus, models.RoleSeller, models.RoleAdmin))
}

func AddPropertyRoutes(router *httprouter.Router) {
	router.GET("/api/properties", properties.List)
	router.GET("/api/properties/mine", middleware.RequireRoles(properties.ListMine, models.RoleSeller, models.RoleAdmin))
	router.GET("/api/properties/:propertyid", middleware.OptionalAuth(properties.Get))
	router.POST("/api/properties", middleware.RequireRoles(properties.Create, models.RoleSeller, models.RoleAdmin))
	router.PUT("/api/properties/:propertyid", middleware.RequireRoles(properties.Update, models.RoleSeller, models.RoleAdmin))
	router.DELETE("/api/properties/:propertyid", middleware.RequireRoles(properties.Delete, models.RoleSeller, models.RoleAdmin))
	router.GET("/api/amenities", properties.ListAmenities)
	router.POST("/api/amenities", middleware.RequireRoles(properties.AddAmenity, models.RoleAdmin))
}

func AddReviewsRoutes(router *httprouter.Router) {
	router.GET("/api/properties/:propertyid/reviews", reviews.GetReviews)
	router.POST("/api/properties/:propertyid/reviews", middleware.RequireRoles(reviews.AddReview, models.RoleCustomer))
	router.DELETE("/api/reviews/:reviewid", middleware.Authenticate(reviews.DeleteReview))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/profile", middleware.Authenticate(profile.EditProfile))
	router.POST("/api/profile/avatar", middleware.Authenticate(profile.UploadAvatar))
}

func AddAdminRoutes(router *httprouter.Router, h *admin.Handlers) {
	adminOnly := func(handle httprouter.Handle) httprouter.Handle {
		return middleware.RequireRoles(handle, models.RoleAdmin)
	}

	router.GET("/api/admin/sellers", adminOnly(h.ListSellers))
	router.GET("/api/admin/sellers/pending", adminOnly(h.ListPendingSellers))
	router.PUT("/api/admin/sellers/:userid/approve", adminOnly(h.SetSellerApproval(models.ApprovalApproved)))
	router.PUT("/api/admin/sellers/:userid/reject", adminOnly(h.SetSellerApproval(models.ApprovalRejected)))
	router.GET("/api/admin/customers", adminOnly(h.ListCustomers))
	router.GET("/api/admin/properties", adminOnly(h.ListProperties))
	router.DELETE("/api/admin/users/:userid", adminOnly(h.DeleteUser))
	router.GET("/api/admin/stats", adminOnly(h.Stats))
}

// AddFeedRoutes exposes the live event stream. Topics are "meetings" and
// "bookings".
func AddFeedRoutes(router *httprouter.Router, feed *livefeed.Feed) {
	router.GET("/ws/feed/:topic", feed.HandleWS)
}

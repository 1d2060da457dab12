package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/infrastructure/auth"
	"github.com/unicef/etools-sub003/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	TenantIDKey   = "tenant_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuthMiddleware validates the directory-issued bearer token and stores
// the resolved actor plus tenant scope on the request context.
func JWTAuthMiddleware(jwtService *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range skipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(header, BearerPrefix)

		claims, err := jwtService.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		tenantID, err := claims.GetTenantUUID()
		if err != nil {
			abortUnauthorized(c, "invalid tenant_id claim")
			return
		}
		userID, err := claims.GetUserUUID()
		if err != nil {
			abortUnauthorized(c, "invalid user_id claim")
			return
		}
		orgIDs, err := claims.GetOrganizationUUIDs()
		if err != nil {
			abortUnauthorized(c, "invalid organization_ids claim")
			return
		}
		partnerID, err := claims.GetPartnerUUID()
		if err != nil {
			abortUnauthorized(c, "invalid partner_id claim")
			return
		}

		actor := identity.Actor{
			UserID:          userID,
			Email:           claims.Email,
			Groups:          claims.Groups,
			OrganizationIDs: orgIDs,
			PartnerID:       partnerID,
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ActorKey, actor)
		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", message))
}

// GetActor returns the authenticated actor stored by the JWT middleware.
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

// GetTenantID returns the tenant scope stored by the JWT middleware.
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

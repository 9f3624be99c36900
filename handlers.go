package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"statrater/models"
	"statrater/pkg/config"
	"statrater/pkg/locale"
	"statrater/pkg/ocr"
	"statrater/pkg/rating"
	"statrater/pkg/stats"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.PUT("/me/locale", setLocaleHandler)
	authGroup.GET("/locales", listLocalesHandler)
	authGroup.POST("/rate", rateHandler)
	authGroup.GET("/ratings", listRatingsHandler)
	authGroup.GET("/ratings/:id", getRatingHandler)
	authGroup.GET("/presets", listPresetsHandler)
	authGroup.POST("/presets", savePresetHandler)
	authGroup.DELETE("/presets/:name", deletePresetHandler)
	authGroup.GET("/ws", feedHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		switch {
		case len(authHeader) >= 8 && authHeader[:7] == "Bearer ":
			tokenString = authHeader[7:]
		case authHeader == "" && c.Query("access_token") != "":
			// browsers cannot set headers on websocket upgrades
			tokenString = c.Query("access_token")
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	role := c.GetString("role")
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string), "role": role})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == models.RoleAdministrator
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Locale   string `json:"locale"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := Register(req.Username, req.Password, req.Locale)
	if errors.Is(err, locale.ErrUnknownLocale) || errors.Is(err, models.ErrUsernameRequired) || errors.Is(err, models.ErrPasswordTooShort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := signAccessToken(user.Username, roleName(user), loginTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || !rt.Usable(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tokenString, err := signAccessToken(user.Username, roleName(user), refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func setLocaleHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Locale string `json:"locale" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := svc.Locales().Lookup(req.Locale)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := db.Model(user).Update("locale", p.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locale": p.ID})
}

func listLocalesHandler(c *gin.Context) {
	reg := svc.Locales()
	def, _ := reg.Lookup("")
	out := make([]gin.H, 0)
	for _, id := range reg.IDs() {
		p, err := reg.Lookup(id)
		if err != nil {
			continue
		}
		out = append(out, gin.H{"id": p.ID, "name": p.Name, "ocr_code": p.OCRCode, "default": def == p})
	}
	c.JSON(http.StatusOK, out)
}

// rateRequest is the body of POST /rate, as JSON or as multipart form
// fields next to a screenshot in "file".
type rateRequest struct {
	Text   string `json:"text" form:"text"`
	URL    string `json:"url" form:"url"`
	Locale string `json:"locale" form:"locale"`
	Preset string `json:"preset" form:"preset"`
	Buffs  string `json:"buffs" form:"buffs"`

	file *multipart.FileHeader
}

func maxUploadBytes() int64 {
	if appConfig.MaxUpload > 0 {
		return appConfig.MaxUpload
	}
	return config.Default().MaxUpload
}

func bindRateRequest(c *gin.Context) (rateRequest, error) {
	var req rateRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			return req, err
		}
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			req.file = fh
		case !errors.Is(err, http.ErrMissingFile):
			return req, err
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}

	sources := 0
	for _, set := range []bool{strings.TrimSpace(req.Text) != "", req.URL != "", req.file != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return req, errors.New("exactly one of text, url or file is required")
	}
	if req.file != nil {
		if req.file.Size > maxUploadBytes() {
			return req, fmt.Errorf("file too large (max %d bytes)", maxUploadBytes())
		}
		if !ocr.SupportedExt(req.file.Filename) {
			return req, fmt.Errorf("unsupported file type %q", filepath.Ext(req.file.Filename))
		}
	}
	return req, nil
}

// rateErrorStatus maps a rating failure to its HTTP status.
func rateErrorStatus(err error) int {
	var pe *stats.ParseError
	var ue *ocr.UpstreamError
	switch {
	case errors.As(err, &pe), errors.Is(err, stats.ErrDivisionPrecondition),
		errors.Is(err, ocr.ErrNoText), errors.Is(err, ocr.ErrBadImage):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.Is(err, locale.ErrUnknownLocale), errors.Is(err, stats.ErrBadBuff),
		errors.Is(err, ocr.ErrBadURL), errors.Is(err, ocr.ErrTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeRateError(c *gin.Context, out rating.Outcome, err error) {
	body := gin.H{"error": rating.Message(err, out.Locale)}
	var pe *stats.ParseError
	if errors.As(err, &pe) {
		body["field"] = pe.Field
		body["position"] = pe.Position
		body["tokens"] = out.Report.Sheet.Tokens
		body["line_count"] = out.Report.Sheet.LineCount()
	}
	var ue *ocr.UpstreamError
	if errors.As(err, &ue) {
		body["upstream"] = ue.Error()
	}
	c.JSON(rateErrorStatus(err), body)
}

// fieldNames returns the display name of every record field in loc.
func fieldNames(loc *locale.Profile) map[stats.Field]string {
	names := make(map[stats.Field]string, len(stats.AllFields))
	for _, f := range stats.AllFields {
		names[f] = loc.FieldName(string(f))
	}
	return names
}

func rateHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	req, err := bindRateRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	locID := req.Locale
	if locID == "" {
		locID = user.Locale
	}
	var flags []string
	if req.Preset != "" {
		var p models.Preset
		if err := db.Where("user_id = ? AND name = ?", user.ID, req.Preset).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "preset not found"})
			return
		}
		flags = append(flags, p.Buffs)
	}
	buffs, err := rating.Buffs(append(flags, req.Buffs)...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var out rating.Outcome
	var source string
	switch {
	case req.file != nil:
		dir := userUploadDir(user.ID)
		if err := os.MkdirAll(dir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
			return
		}
		source = filepath.Base(req.file.Filename)
		path := filepath.Join(dir, source)
		if err := c.SaveUploadedFile(req.file, path); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		out, err = svc.Image(ctx, locID, path, buffs)
	case req.URL != "":
		source = req.URL
		out, err = rateURL(ctx, user.ID, locID, req.URL, buffs)
	default:
		out, err = svc.Text(locID, req.Text, buffs)
	}
	if err != nil {
		log.Printf("WARN rate user=%s source=%q: %v", user.Username, source, err)
		writeRateError(c, out, err)
		return
	}

	rt := models.NewRating(user.ID, source, out.Locale.ID, out.Report)
	if err := db.Create(&rt).Error; err != nil {
		log.Printf("WARN store rating user=%s: %v", user.Username, err)
	}
	body := gin.H{
		"id":            rt.ID,
		"locale":        out.Locale.ID,
		"record":        out.Report.Record,
		"fields":        fieldNames(out.Locale),
		"applied_buffs": out.Report.Applied,
		"result":        out.Report.Result,
	}
	ratingFeed.Publish(user.Username, gin.H{"type": "rating", "source": source, "rating": body})
	c.JSON(http.StatusOK, body)
}

// feedHandler streams the caller's new ratings over a websocket.
func feedHandler(c *gin.Context) {
	ratingFeed.Serve(c.Writer, c.Request, c.GetString("username"))
}

// rateURL downloads the screenshot into the user's upload dir and rates it.
func rateURL(ctx context.Context, userID uint, locID, url string, buffs stats.BuffSet) (rating.Outcome, error) {
	dir := userUploadDir(userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return rating.Outcome{}, err
	}
	path, err := ocr.Download(ctx, url, dir)
	if err != nil {
		// resolve the locale anyway so the error is localized
		p, _ := svc.Parser(locID)
		out := rating.Outcome{}
		if p != nil {
			out.Locale = p.Locale()
		}
		return out, err
	}
	return svc.Image(ctx, locID, path, buffs)
}

// listRatingsHandler returns recent ratings; admin sees all, users their own.
func listRatingsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	var items []models.Rating
	q := db.Model(&models.Rating{})
	if !isAdmin(c) {
		q = q.Where("user_id = ?", user.ID)
	}
	if loc := c.Query("locale"); loc != "" {
		q = q.Where("locale = ?", strings.ToLower(loc))
	}
	if err := q.Order("id desc").Limit(limit).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// getRatingHandler returns a single rating if admin or owner.
func getRatingHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var rt models.Rating
	if err := db.First(&rt, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if !isAdmin(c) && rt.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, rt)
}

func listPresetsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Preset
	if err := db.Where("user_id = ?", user.ID).Order("name").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// bindPresetRequest reads a preset body. Names are trimmed and must not be
// blank.
func bindPresetRequest(c *gin.Context) (string, stats.BuffSet, error) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Buffs string `json:"buffs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", nil, errors.New("preset name is required")
	}
	buffs, err := stats.ParseBuffs(req.Buffs)
	if err != nil {
		return "", nil, err
	}
	return name, buffs, nil
}

// savePresetHandler creates or replaces a named preset of the current user.
func savePresetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	name, buffs, err := bindPresetRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := models.Preset{UserID: user.ID, Name: name}
	if err := db.Where("user_id = ? AND name = ?", user.ID, name).FirstOrInit(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	p.Buffs = stats.FormatBuffs(buffs)
	if err := db.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func deletePresetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Where("user_id = ? AND name = ?", user.ID, c.Param("name")).Delete(&models.Preset{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "preset not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "preset deleted"})
}

package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/core/ports"
)

// maxLogoBytes caps uploaded logo size.
const maxLogoBytes = 5 << 20

// CompanyHandler handles HTTP requests for the company-info singleton.
type CompanyHandler struct {
	service ports.CompanyService
}

func NewCompanyHandler(service ports.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

type companyRequest struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	VATID       string `json:"vat_id"`
	IBAN        string `json:"iban"`
	PinID       string `json:"pin_id"`
	Web         string `json:"web"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
}

// Get handles GET /v1/company. A missing row is created with placeholder
// defaults rather than returning 404.
func (h *CompanyHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	info, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// Save handles PUT /v1/company.
func (h *CompanyHandler) Save(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req companyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	info, err := h.service.Save(c.Request().Context(), userID, ports.CompanyInput{
		Name:        req.Name,
		Address:     req.Address,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		VATID:       req.VATID,
		IBAN:        req.IBAN,
		PinID:       req.PinID,
		Web:         req.Web,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// UploadLogo handles POST /v1/company/logo as a multipart upload.
func (h *CompanyHandler) UploadLogo(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing logo file")
	}
	if file.Size > maxLogoBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "logo too large")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable logo file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxLogoBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable logo file")
	}

	url, err := h.service.UploadLogo(c.Request().Context(), userID, file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"logo_url": url})
}

// LogoLink handles GET /v1/company/logo, returning a short-lived signed
// download link. 404 when no logo has been uploaded yet.
func (h *CompanyHandler) LogoLink(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	link, err := h.service.LogoLink(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"url": link})
}

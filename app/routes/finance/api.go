package finance

import (
	"github.com/SoMApHQ/somapappv1-sub000/app/services/finance"

	"github.com/gofiber/fiber/v2"
)

// GetStudentFinanceAPI returns a student's composed financial position for
// a year.
func GetStudentFinanceAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	if year == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "year is required")
	}

	record, err := svc.LoadStudentFinance(year, c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load student finance")
	}
	if record == nil {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// GetStudentFinanceAtCutoffAPI returns a student's position recomputed as
// of a historical date.
func GetStudentFinanceAtCutoffAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	cutoff := c.Query("date")
	if year == 0 || cutoff == "" {
		return fiber.NewError(fiber.StatusBadRequest, "year and date are required")
	}

	record, err := svc.LoadStudentFinanceAtCutoff(year, c.Params("id"), cutoff)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if record == nil {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    record,
	})
}

// GetSchoolTotalsAPI returns school-wide due/collected/outstanding for a
// year.
func GetSchoolTotalsAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	if year == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "year is required")
	}

	totals, err := svc.LoadSchoolTotals(year)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load school totals")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    totals,
	})
}

// GetBalanceAPI returns the outstanding balance for a student identified
// by id or admission number.
func GetBalanceAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	identifier := c.Query("ref")
	if year == 0 || identifier == "" {
		return fiber.NewError(fiber.StatusBadRequest, "year and ref are required")
	}

	balance, err := svc.BalanceForYearAdmission(year, identifier)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load balance")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"balance": balance},
	})
}

// GetRecentPaymentsAPI returns the newest payments for a year.
func GetRecentPaymentsAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	if year == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "year is required")
	}
	limit := c.QueryInt("limit", 20)

	payments, err := svc.ListRecentPayments(year, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load recent payments")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payments,
	})
}

// GetExpenseTotalAPI returns the year's total recorded expenses.
func GetExpenseTotalAPI(c *fiber.Ctx, svc *finance.Service) error {
	year := c.QueryInt("year")
	if year == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "year is required")
	}

	total, err := svc.LoadExpenseTotal(year)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load expense total")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"total": total},
	})
}

// ClearCachesAPI drops every memoized dataset. Write paths call this
// after recording new payment data.
func ClearCachesAPI(c *fiber.Ctx, svc *finance.Service) error {
	svc.ClearCaches()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Finance caches cleared",
	})
}

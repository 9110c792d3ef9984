package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

const (
	SheetMedicineOrders = "Medicine Orders"
	SheetLabBookings    = "Lab Bookings"
	SheetAppointments   = "Appointments"
)

var (
	medicineOrderHeader = []string{"Order ID", "User ID", "Order Date", "Items", "Subtotal", "GST", "Delivery Fee", "Promise Fee", "Total", "Status", "City", "Pincode", "Delivery Person"}
	labBookingHeader    = []string{"Booking ID", "User ID", "Booked At", "Patient", "Test", "Collection Date", "Slot", "Subtotal", "GST", "Total", "Status", "Collector"}
	appointmentHeader   = []string{"Appointment ID", "User ID", "Patient", "Doctor", "Specialty", "Date", "Time", "Fee", "GST", "Total", "Status"}
)

// ReportService exports bookings to XLSX for the admin dashboard
type ReportService struct {
	orders       repositories.MedicineOrderRepository
	bookings     repositories.LabBookingRepository
	appointments repositories.AppointmentRepository
}

// NewReportService creates a new report service
func NewReportService(
	orders repositories.MedicineOrderRepository,
	bookings repositories.LabBookingRepository,
	appointments repositories.AppointmentRepository,
) *ReportService {
	return &ReportService{orders: orders, bookings: bookings, appointments: appointments}
}

// ExportBookings writes one sheet per booking kind and returns the workbook
func (s *ReportService) ExportBookings(ctx context.Context) ([]byte, error) {
	orders, err := s.orders.List(ctx, repositories.OrderFilter{})
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.List(ctx, repositories.LabBookingFilter{})
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.List(ctx, repositories.AppointmentFilter{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	orderRows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		var courier string
		if !o.DeliveryBoy.IsZero() {
			courier = o.DeliveryBoy.Name
		}
		orderRows = append(orderRows, []interface{}{
			o.ID, o.UserID, o.OrderDate.Format(time.RFC3339), orderItemsSummary(o.Items),
			o.Subtotal.Decimal(), o.GST.Decimal(), o.DeliveryFee.Decimal(), o.PromiseFee.Decimal(), o.TotalAmount.Decimal(),
			string(o.Status), o.DeliveryAddress.City, o.DeliveryAddress.Pincode, courier,
		})
	}

	bookingRows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		var collector string
		if !b.DeliveryBoy.IsZero() {
			collector = b.DeliveryBoy.Name
		}
		bookingRows = append(bookingRows, []interface{}{
			b.ID, b.UserID, b.BookingDate.Format(time.RFC3339), b.PatientName, b.TestName, b.CollectionDate, b.Slot,
			b.Subtotal.Decimal(), b.GST.Decimal(), b.TotalAmount.Decimal(), string(b.Status), collector,
		})
	}

	appointmentRows := make([][]interface{}, 0, len(appointments))
	for _, a := range appointments {
		appointmentRows = append(appointmentRows, []interface{}{
			a.ID, a.UserID, a.PatientName, a.DoctorName, a.Specialty, a.AppointmentDate, a.AppointmentTime,
			a.ConsultationFee.Decimal(), a.GST.Decimal(), a.TotalAmount.Decimal(), string(a.Status),
		})
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetMedicineOrders, medicineOrderHeader, orderRows},
		{SheetLabBookings, labBookingHeader, bookingRows},
		{SheetAppointments, appointmentHeader, appointmentRows},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}

func orderItemsSummary(items []entities.OrderItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s x%d", item.MedicineName, item.Quantity)
	}
	return strings.Join(parts, ", ")
}

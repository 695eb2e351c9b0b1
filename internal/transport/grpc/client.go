package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls agenda.v1.Scheduling over an existing connection using the
// JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBooking(ctx context.Context, req *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "CreateBooking", req, opts)
}

func (c *Client) GetBooking(ctx context.Context, req *GetBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "GetBooking", req, opts)
}

func (c *Client) GetBookingByNumber(ctx context.Context, req *GetBookingByNumberRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "GetBookingByNumber", req, opts)
}

func (c *Client) ListBookings(ctx context.Context, req *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c, "ListBookings", req, opts)
}

func (c *Client) RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "RescheduleBooking", req, opts)
}

func (c *Client) CancelBooking(ctx context.Context, req *CancelBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "CancelBooking", req, opts)
}

func (c *Client) CompleteBooking(ctx context.Context, req *CompleteBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "CompleteBooking", req, opts)
}

func (c *Client) UpdateBookingCustomer(ctx context.Context, req *UpdateBookingCustomerRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "UpdateBookingCustomer", req, opts)
}

func (c *Client) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, "ConfirmPayment", req, opts)
}

func (c *Client) GetBookingHistory(ctx context.Context, req *GetBookingHistoryRequest, opts ...grpc.CallOption) (*GetBookingHistoryResponse, error) {
	return invoke[GetBookingHistoryResponse](ctx, c, "GetBookingHistory", req, opts)
}

func (c *Client) CreateBlock(ctx context.Context, req *CreateBlockRequest, opts ...grpc.CallOption) (*BlockResponse, error) {
	return invoke[BlockResponse](ctx, c, "CreateBlock", req, opts)
}

func (c *Client) CancelBlock(ctx context.Context, req *CancelBlockRequest, opts ...grpc.CallOption) (*BlockResponse, error) {
	return invoke[BlockResponse](ctx, c, "CancelBlock", req, opts)
}

func (c *Client) ListCalendarEvents(ctx context.Context, req *ListCalendarEventsRequest, opts ...grpc.CallOption) (*ListCalendarEventsResponse, error) {
	return invoke[ListCalendarEventsResponse](ctx, c, "ListCalendarEvents", req, opts)
}

func (c *Client) ListAvailableSlots(ctx context.Context, req *ListAvailableSlotsRequest, opts ...grpc.CallOption) (*ListAvailableSlotsResponse, error) {
	return invoke[ListAvailableSlotsResponse](ctx, c, "ListAvailableSlots", req, opts)
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "agenda.v1.Scheduling"

// SchedulingAPI is the server side of agenda.v1.Scheduling.
type SchedulingAPI interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error)
	GetBookingByNumber(ctx context.Context, req *GetBookingByNumberRequest) (*BookingResponse, error)
	ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error)
	RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest) (*BookingResponse, error)
	CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error)
	CompleteBooking(ctx context.Context, req *CompleteBookingRequest) (*BookingResponse, error)
	UpdateBookingCustomer(ctx context.Context, req *UpdateBookingCustomerRequest) (*BookingResponse, error)
	ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*BookingResponse, error)
	GetBookingHistory(ctx context.Context, req *GetBookingHistoryRequest) (*GetBookingHistoryResponse, error)
	CreateBlock(ctx context.Context, req *CreateBlockRequest) (*BlockResponse, error)
	CancelBlock(ctx context.Context, req *CancelBlockRequest) (*BlockResponse, error)
	ListCalendarEvents(ctx context.Context, req *ListCalendarEventsRequest) (*ListCalendarEventsResponse, error)
	ListAvailableSlots(ctx context.Context, req *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(SchedulingAPI, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		api := srv.(SchedulingAPI)
		if interceptor == nil {
			return call(api, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(api, ctx, req.(*Req))
		})
	}
}

var schedulingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingAPI)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", SchedulingAPI.CreateBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", SchedulingAPI.GetBooking)},
		{MethodName: "GetBookingByNumber", Handler: unaryHandler("GetBookingByNumber", SchedulingAPI.GetBookingByNumber)},
		{MethodName: "ListBookings", Handler: unaryHandler("ListBookings", SchedulingAPI.ListBookings)},
		{MethodName: "RescheduleBooking", Handler: unaryHandler("RescheduleBooking", SchedulingAPI.RescheduleBooking)},
		{MethodName: "CancelBooking", Handler: unaryHandler("CancelBooking", SchedulingAPI.CancelBooking)},
		{MethodName: "CompleteBooking", Handler: unaryHandler("CompleteBooking", SchedulingAPI.CompleteBooking)},
		{MethodName: "UpdateBookingCustomer", Handler: unaryHandler("UpdateBookingCustomer", SchedulingAPI.UpdateBookingCustomer)},
		{MethodName: "ConfirmPayment", Handler: unaryHandler("ConfirmPayment", SchedulingAPI.ConfirmPayment)},
		{MethodName: "GetBookingHistory", Handler: unaryHandler("GetBookingHistory", SchedulingAPI.GetBookingHistory)},
		{MethodName: "CreateBlock", Handler: unaryHandler("CreateBlock", SchedulingAPI.CreateBlock)},
		{MethodName: "CancelBlock", Handler: unaryHandler("CancelBlock", SchedulingAPI.CancelBlock)},
		{MethodName: "ListCalendarEvents", Handler: unaryHandler("ListCalendarEvents", SchedulingAPI.ListCalendarEvents)},
		{MethodName: "ListAvailableSlots", Handler: unaryHandler("ListAvailableSlots", SchedulingAPI.ListAvailableSlots)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "agenda/v1/scheduling.json",
}

func RegisterSchedulingServer(s grpc.ServiceRegistrar, srv SchedulingAPI) {
	s.RegisterService(&schedulingServiceDesc, srv)
}

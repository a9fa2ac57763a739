// Package socketcan binds can.Bus to the Linux SocketCAN stack, the kernel's
// raw CAN_RAW sockets. It is the host-side transport for talking to real
// interfaces (can0, vcan0) and is only built on Linux; other platforms get an
// empty package so the module still builds there.
package socketcan

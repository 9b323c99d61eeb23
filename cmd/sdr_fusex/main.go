package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the gap width OOK receiver.
 *
 *		Samples from an RTL-SDR dongle (local or rtl_tcp), a
 *		sound card or a file are decoded into text messages,
 *		which go to stdout and optionally a log file, serial
 *		port, pseudo terminal and TCP clients.
 *
 *---------------------------------------------------------------*/

import (
	fusex "github.com/doismellburning/sdrfusex/src"
)

func main() {
	fusex.ReceiverMain()
}

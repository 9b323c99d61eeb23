package main

/*------------------------------------------------------------------
 *
 * Purpose:   	List RTL2832U dongles as librtlsdr and udev see them.
 *
 *---------------------------------------------------------------*/

import (
	fusex "github.com/doismellburning/sdrfusex/src"
)

func main() {
	fusex.DevicesMain()
}

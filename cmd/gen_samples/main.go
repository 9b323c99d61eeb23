package main

import (
	fusex "github.com/doismellburning/sdrfusex/src"
)

func main() {
	fusex.GenSamplesMain()
}
